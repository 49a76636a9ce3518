package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/services"
)

// fataler is the part of testing.TB (and rapid.T) the fixtures need.
type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

type fixture struct {
	db      *sqlx.DB
	prods   *repos.ProductRepo
	users   *repos.UserRepo
	orders  *services.OrderService
	catalog *services.CatalogService
	auth    *services.AuthService
}

func newFixture(t fataler, db *sqlx.DB) *fixture {
	t.Helper()
	prods := repos.NewProductRepo(db)
	users := repos.NewUserRepo(db)
	return &fixture{
		db:      db,
		prods:   prods,
		users:   users,
		orders:  services.NewOrderService(db, prods, repos.NewOrderRepo(db)),
		catalog: services.NewCatalogService(prods),
		auth:    services.NewAuthService(users, time.Hour, bcrypt.MinCost),
	}
}

func openMem(t fataler) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := openMem(t)
	t.Cleanup(func() { _ = db.Close() })
	return newFixture(t, db)
}

func (f *fixture) customer(t fataler, email string) services.Actor {
	t.Helper()
	u, err := f.users.Create(context.Background(), email, "x", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return services.Actor{UserID: u.ID, Role: u.Role}
}

func (f *fixture) admin(t fataler) services.Actor {
	t.Helper()
	u, err := f.users.Create(context.Background(), "admin@example.com", "x", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return services.Actor{UserID: u.ID, Role: u.Role}
}

func (f *fixture) product(t fataler, name string, price, inventory int64) int64 {
	t.Helper()
	p, err := f.prods.Create(context.Background(), repos.NewProduct{
		Name: name, PriceCents: price, Inventory: inventory, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p.ID
}

func (f *fixture) inventory(t fataler, id int64) int64 {
	t.Helper()
	p, err := f.prods.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get product %d: %v", id, err)
	}
	return p.Inventory
}

// state captures everything a failed placement must leave untouched.
type state struct {
	Stock  map[int64]int64
	Orders int
	Items  int
}

func (f *fixture) state(t fataler) state {
	t.Helper()
	s := state{Stock: map[int64]int64{}}
	rows := []struct {
		ID        int64 `db:"id"`
		Inventory int64 `db:"inventory"`
	}{}
	if err := f.db.Select(&rows, `SELECT id, inventory FROM products`); err != nil {
		t.Fatalf("read products: %v", err)
	}
	for _, r := range rows {
		s.Stock[r.ID] = r.Inventory
	}
	if err := f.db.Get(&s.Orders, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if err := f.db.Get(&s.Items, `SELECT COUNT(*) FROM order_items`); err != nil {
		t.Fatalf("count items: %v", err)
	}
	return s
}
