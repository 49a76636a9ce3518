package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// ---------- Placement (inside the caller's transaction) ----------

// InsertPending creates the order header with a zero total.
func (r *OrderRepo) InsertPending(ctx context.Context, tx sqlx.ExtContext, userID int64) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, tx, &id, tx.Rebind(`
		INSERT INTO orders(user_id, status, total_cents, created_at)
		VALUES(?, ?, 0, ?)
		RETURNING id
	`), userID, domain.OrderPending, stamp())
	return id, err
}

func (r *OrderRepo) InsertItem(ctx context.Context, tx sqlx.ExtContext, orderID, productID, qty, unitPrice int64) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO order_items(order_id, product_id, quantity, unit_price_cents)
		VALUES(?, ?, ?, ?)
	`), orderID, productID, qty, unitPrice)
	return err
}

// FinalizeTotal writes the accumulated total and returns the resulting header.
func (r *OrderRepo) FinalizeTotal(ctx context.Context, tx sqlx.ExtContext, orderID, total int64) (domain.Order, error) {
	var o domain.Order
	err := sqlx.GetContext(ctx, tx, &o, tx.Rebind(`
		UPDATE orders SET total_cents = ?
		WHERE id = ?
		RETURNING id, user_id, status, total_cents, created_at
	`), total, orderID)
	return o, err
}

// ---------- Reads ----------

// ListByUser returns the user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, user_id, status, total_cents, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY id DESC
	`), userID)
	return out, err
}

// ListAll returns every order with its owner's email, newest first.
func (r *OrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT o.id, o.user_id, u.email, o.status, o.total_cents, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.id DESC
	`)
	return out, err
}

// GetForRequester loads one order header. Unless isAdmin, the owner id is part of
// the WHERE clause, so a foreign order and a missing one both yield sql.ErrNoRows.
func (r *OrderRepo) GetForRequester(ctx context.Context, orderID, requesterID int64, isAdmin bool) (domain.Order, error) {
	query := `
		SELECT o.id, o.user_id, u.email, o.status, o.total_cents, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = ?`
	args := []any{orderID}
	if !isAdmin {
		query += ` AND o.user_id = ?`
		args = append(args, requesterID)
	}

	var o domain.Order
	err := r.db.GetContext(ctx, &o, r.db.Rebind(query), args...)
	return o, err
}

// Items returns the order's lines with current product names and captured prices.
func (r *OrderRepo) Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	out := []domain.OrderItem{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT oi.id, oi.product_id, p.name AS product_name, oi.quantity, oi.unit_price_cents,
		       (oi.quantity * oi.unit_price_cents) AS line_total_cents
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.id
	`), orderID)
	return out, err
}
