package domain

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	OrderPending = "pending"
)

type User struct {
	ID        int64  `db:"id" json:"id"`
	Email     string `db:"email" json:"email"`
	Hash      string `db:"password_hash" json:"-"`
	Role      string `db:"role" json:"role"`
	CreatedAt string `db:"created_at" json:"created_at,omitempty"`
}

type Product struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	PriceCents  int64  `db:"price_cents" json:"price_cents"`
	Inventory   int64  `db:"inventory" json:"inventory"`
	IsActive    bool   `db:"is_active" json:"is_active"`
	CreatedAt   string `db:"created_at" json:"created_at"`
	UpdatedAt   string `db:"updated_at" json:"updated_at,omitempty"`
}

// StockLevel is a point-in-time view of one product's ledger row.
type StockLevel struct {
	ProductID  int64 `db:"id" json:"product_id"`
	PriceCents int64 `db:"price_cents" json:"price_cents"`
	Inventory  int64 `db:"inventory" json:"inventory"`
	IsActive   bool  `db:"is_active" json:"is_active"`
}

type Order struct {
	ID         int64  `db:"id" json:"id"`
	UserID     int64  `db:"user_id" json:"user_id"`
	Email      string `db:"email" json:"email,omitempty"`
	Status     string `db:"status" json:"status"`
	TotalCents int64  `db:"total_cents" json:"total_cents"`
	CreatedAt  string `db:"created_at" json:"created_at"`
}

// OrderItem is a line item; UnitPriceCents is the price captured when the order was placed.
type OrderItem struct {
	ID             int64  `db:"id" json:"id"`
	ProductID      int64  `db:"product_id" json:"product_id"`
	ProductName    string `db:"product_name" json:"product_name"`
	Quantity       int64  `db:"quantity" json:"quantity"`
	UnitPriceCents int64  `db:"unit_price_cents" json:"unit_price_cents"`
	LineTotalCents int64  `db:"line_total_cents" json:"line_total_cents"`
}

type OrderDetail struct {
	Order
	Items []OrderItem `json:"items"`
}
