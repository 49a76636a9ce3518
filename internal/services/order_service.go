package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"storefront/internal/apperr"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

// Actor is the caller identity every service operation receives explicitly.
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

// Tx is the part of *sqlx.Tx order placement uses.
type Tx interface {
	sqlx.ExtContext
	Commit() error
	Rollback() error
}

type OrderService struct {
	DB       *sqlx.DB
	Products *repos.ProductRepo
	Orders   *repos.OrderRepo

	// Begin starts the placement transaction. Nil means DB.BeginTxx.
	Begin func(ctx context.Context) (Tx, error)
}

func NewOrderService(db *sqlx.DB, products *repos.ProductRepo, orders *repos.OrderRepo) *OrderService {
	return &OrderService{DB: db, Products: products, Orders: orders}
}

// Merge collapses lines for the same product into one by summing quantities.
// Lines keep the position of the first occurrence of their product. A sum that
// does not fit in int64 is reported against the request line that overflowed it.
func Merge(lines []validate.OrderLine) ([]validate.OrderLine, error) {
	out := make([]validate.OrderLine, 0, len(lines))
	idx := make(map[int64]int, len(lines))
	for n, l := range lines {
		if i, ok := idx[l.ProductID]; ok {
			if l.Quantity > math.MaxInt64-out[i].Quantity {
				field := fmt.Sprintf("items[%d].quantity", n)
				return nil, apperr.InvalidFields("validation failed", map[string]string{
					field: "combined quantity for this product is too large",
				})
			}
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}

func (s *OrderService) begin(ctx context.Context) (Tx, error) {
	if s.Begin != nil {
		return s.Begin(ctx)
	}
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Place creates a pending order for actor, decrementing inventory for every line
// inside one transaction. Either everything commits or nothing is visible.
func (s *OrderService) Place(ctx context.Context, actor Actor, lines []validate.OrderLine) (order domain.Order, err error) {
	if actor.UserID <= 0 {
		return domain.Order{}, apperr.New(apperr.Unauthorized, "Authentication required")
	}
	if verr := validate.Struct(validate.PlaceOrderRequest{Items: lines}); verr != nil {
		return domain.Order{}, verr
	}
	lines, verr := Merge(lines)
	if verr != nil {
		return domain.Order{}, verr
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return domain.Order{}, apperr.Wrap(err, "begin order transaction")
	}
	defer func() {
		if err == nil {
			return
		}
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			applog.Error(nil, "order.rollback.fail", rerr, map[string]any{"user_id": actor.UserID})
		}
	}()

	orderID, err := s.Orders.InsertPending(ctx, tx, actor.UserID)
	if err != nil {
		return domain.Order{}, apperr.FromStorage(err, "could not create order")
	}

	var total int64
	for _, l := range lines {
		price, derr := s.Products.ConditionalDecrement(ctx, tx, l.ProductID, l.Quantity)
		if errors.Is(derr, repos.ErrNotAvailable) {
			return domain.Order{}, apperr.Unavailablef("Product %d not available or insufficient inventory", l.ProductID)
		}
		if derr != nil {
			return domain.Order{}, apperr.FromStorage(derr, "could not reserve inventory")
		}

		if price > 0 && l.Quantity > (math.MaxInt64-total)/price {
			return domain.Order{}, apperr.Invalidf("order total exceeds the supported range")
		}
		total += price * l.Quantity

		if err = s.Orders.InsertItem(ctx, tx, orderID, l.ProductID, l.Quantity, price); err != nil {
			return domain.Order{}, apperr.FromStorage(err, "could not add order item")
		}
	}

	order, err = s.Orders.FinalizeTotal(ctx, tx, orderID, total)
	if err != nil {
		return domain.Order{}, apperr.FromStorage(err, "could not finalize order")
	}
	if err = tx.Commit(); err != nil {
		return domain.Order{}, apperr.Wrap(err, "commit order")
	}
	return order, nil
}

// ListMine returns the actor's own orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, actor Actor) ([]domain.Order, error) {
	if actor.UserID <= 0 {
		return nil, apperr.New(apperr.Unauthorized, "Authentication required")
	}
	out, err := s.Orders.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.Wrap(err, "list orders")
	}
	return out, nil
}

// ListAll returns every order. Admin only.
func (s *OrderService) ListAll(ctx context.Context, actor Actor) ([]domain.Order, error) {
	if !actor.IsAdmin() {
		return nil, apperr.New(apperr.Forbidden, "Admin access required")
	}
	out, err := s.Orders.ListAll(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, "list all orders")
	}
	return out, nil
}

// Get returns one order with its lines. Orders the actor may not see are reported
// exactly like missing ones.
func (s *OrderService) Get(ctx context.Context, actor Actor, orderID int64) (domain.OrderDetail, error) {
	if actor.UserID <= 0 {
		return domain.OrderDetail{}, apperr.New(apperr.Unauthorized, "Authentication required")
	}
	if orderID <= 0 {
		return domain.OrderDetail{}, apperr.Invalidf("Invalid order id")
	}
	o, err := s.Orders.GetForRequester(ctx, orderID, actor.UserID, actor.IsAdmin())
	if err != nil {
		return domain.OrderDetail{}, apperr.FromStorage(err, "Order not found")
	}
	items, err := s.Orders.Items(ctx, o.ID)
	if err != nil {
		return domain.OrderDetail{}, apperr.Wrap(err, "load order items")
	}
	return domain.OrderDetail{Order: o, Items: items}, nil
}
