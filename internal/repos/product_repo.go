package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

// ErrNotAvailable is returned by ConditionalDecrement when the product is missing,
// inactive, or short on stock. The three causes are not distinguished.
var ErrNotAvailable = errors.New("product not available or insufficient inventory")

const productCols = `id, name, COALESCE(description,'') AS description, price_cents, inventory,
  is_active, created_at, COALESCE(updated_at,'') AS updated_at`

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type ProductFilter struct {
	Active *bool
	Query  string // case-insensitive substring of name
	Limit  int
	Offset int
}

func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	where := []string{}
	args := []any{}
	if f.Active != nil {
		where = append(where, `is_active = ?`)
		args = append(args, *f.Active)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, `LOWER(name) LIKE ?`)
		args = append(args, "%"+strings.ToLower(q)+"%")
	}

	query := `SELECT ` + productCols + ` FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	return p, err
}

type NewProduct struct {
	Name        string
	Description string
	PriceCents  int64
	Inventory   int64
	IsActive    bool
}

func (r *ProductRepo) Create(ctx context.Context, in NewProduct) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`
		INSERT INTO products(name, description, price_cents, inventory, is_active, created_at)
		VALUES(?, ?, ?, ?, ?, ?)
		RETURNING `+productCols),
		in.Name, in.Description, in.PriceCents, in.Inventory, in.IsActive, stamp())
	return p, err
}

// ProductPatch holds the fields an admin update may change; nil means unchanged.
type ProductPatch struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Inventory   *int64
	IsActive    *bool
}

func (r *ProductRepo) Update(ctx context.Context, id int64, p ProductPatch) (domain.Product, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+` = ?`)
		args = append(args, v)
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.PriceCents != nil {
		add("price_cents", *p.PriceCents)
	}
	if p.Inventory != nil {
		add("inventory", *p.Inventory)
	}
	if p.IsActive != nil {
		add("is_active", *p.IsActive)
	}
	add("updated_at", stamp())
	args = append(args, id)

	var out domain.Product
	err := r.db.GetContext(ctx, &out, r.db.Rebind(`
		UPDATE products SET `+strings.Join(sets, ", ")+`
		WHERE id = ?
		RETURNING `+productCols), args...)
	return out, err
}

// Delete removes a product. Returns sql.ErrNoRows when nothing matched.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ConditionalDecrement subtracts qty from the product's inventory in one statement,
// only if the product exists, is active and has at least qty units. It returns the
// unit price read by that same statement.
func (r *ProductRepo) ConditionalDecrement(ctx context.Context, tx sqlx.ExtContext, productID, qty int64) (int64, error) {
	var price int64
	err := sqlx.GetContext(ctx, tx, &price, tx.Rebind(`
		UPDATE products
		SET inventory = inventory - ?, updated_at = ?
		WHERE id = ? AND is_active AND inventory >= ?
		RETURNING price_cents
	`), qty, stamp(), productID, qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotAvailable
	}
	if err != nil {
		return 0, fmt.Errorf("decrement product %d: %w", productID, err)
	}
	return price, nil
}

// BulkRead returns a snapshot of the ledger rows for ids. Missing ids are simply absent.
// The snapshot is stale as soon as it is returned and must not gate a decrement.
func (r *ProductRepo) BulkRead(ctx context.Context, ids []int64) ([]domain.StockLevel, error) {
	out := []domain.StockLevel{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`
		SELECT id, price_cents, inventory, is_active
		FROM products
		WHERE id IN (?)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, err
	}
	err = r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...)
	return out, err
}
