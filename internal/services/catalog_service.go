package services

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

type ProductQuery struct {
	Page   int
	Limit  int
	Active *bool
	Q      string
}

// List pages through the catalog. Non-admin callers only ever see active products.
func (s *CatalogService) List(ctx context.Context, actor Actor, q ProductQuery) ([]domain.Product, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	active := q.Active
	if !actor.IsAdmin() {
		t := true
		active = &t
	}
	out, err := s.Prods.List(ctx, repos.ProductFilter{
		Active: active,
		Query:  q.Q,
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	})
	if err != nil {
		return nil, apperr.Wrap(err, "list products")
	}
	return out, nil
}

func (s *CatalogService) Get(ctx context.Context, actor Actor, id int64) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return domain.Product{}, apperr.FromStorage(err, "Product not found")
	}
	if !p.IsActive && !actor.IsAdmin() {
		return domain.Product{}, apperr.NotFoundf("Product not found")
	}
	return p, nil
}

func (s *CatalogService) Create(ctx context.Context, actor Actor, req validate.CreateProductRequest) (domain.Product, error) {
	if !actor.IsAdmin() {
		return domain.Product{}, apperr.New(apperr.Forbidden, "Admin access required")
	}
	if err := validate.Struct(req); err != nil {
		return domain.Product{}, err
	}
	in := repos.NewProduct{Name: req.Name, Description: req.Description, PriceCents: *req.PriceCents, IsActive: true}
	if req.Inventory != nil {
		in.Inventory = *req.Inventory
	}
	if req.IsActive != nil {
		in.IsActive = *req.IsActive
	}
	p, err := s.Prods.Create(ctx, in)
	if err != nil {
		return domain.Product{}, apperr.FromStorage(err, "could not create product")
	}
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, actor Actor, id int64, req validate.UpdateProductRequest) (domain.Product, error) {
	if !actor.IsAdmin() {
		return domain.Product{}, apperr.New(apperr.Forbidden, "Admin access required")
	}
	if err := validate.Struct(req); err != nil {
		return domain.Product{}, err
	}
	p, err := s.Prods.Update(ctx, id, repos.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Inventory:   req.Inventory,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return domain.Product{}, apperr.FromStorage(err, "Product not found")
	}
	return p, nil
}

// Delete removes a product. Products referenced by orders cannot be deleted;
// deactivate them instead.
func (s *CatalogService) Delete(ctx context.Context, actor Actor, id int64) error {
	if !actor.IsAdmin() {
		return apperr.New(apperr.Forbidden, "Admin access required")
	}
	err := s.Prods.Delete(ctx, id)
	if err == nil {
		return nil
	}
	if apperr.IsForeignKeyViolation(err) {
		return &apperr.Error{Kind: apperr.Conflict, Msg: "Product has orders; deactivate it instead", Err: err}
	}
	return apperr.FromStorage(err, "Product not found")
}

// Availability reports a read-only stock snapshot for ids. It is informational:
// order placement never consults it.
func (s *CatalogService) Availability(ctx context.Context, actor Actor, ids []int64) ([]domain.StockLevel, error) {
	rows, err := s.Prods.BulkRead(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(err, "read stock levels")
	}
	if actor.IsAdmin() {
		return rows, nil
	}
	out := rows[:0]
	for _, r := range rows {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}
