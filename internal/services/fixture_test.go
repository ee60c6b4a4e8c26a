package services_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storelaunch/internal/domain"
	"storelaunch/internal/repos"
)

// shop is a seeded database with one store, its owner, two customers and
// the platform admin.
type shop struct {
	db        *sqlx.DB
	owner     *domain.User
	customer  *domain.User
	customer2 *domain.User
	admin     *domain.User
	store     domain.Store
}

func memShop(t *testing.T) *shop {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return seedShop(t, db)
}

// fileShop backs the shop with a file so several connections can race.
func fileShop(t *testing.T) *shop {
	t.Helper()
	db, err := repos.OpenDB(filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return seedShop(t, db)
}

func seedShop(t *testing.T, db *sqlx.DB) *shop {
	t.Helper()
	ctx := context.Background()
	s := &shop{db: db}
	s.owner = addUser(t, db, "owner@example.com", domain.RoleStoreOwner)
	s.customer = addUser(t, db, "cust@example.com", domain.RoleCustomer)
	s.customer2 = addUser(t, db, "cust2@example.com", domain.RoleCustomer)

	admin, err := repos.NewUserRepo(db).ByEmail(ctx, repos.AdminEmail)
	require.NoError(t, err)
	s.admin = admin

	s.store = domain.Store{
		ID: uuid.NewString(), OwnerID: s.owner.ID, Name: "Dates & Co",
		Slug: "dates-" + uuid.NewString()[:8], SubscriptionPlan: "basic",
	}
	require.NoError(t, repos.NewStoreRepo(db).Create(ctx, s.store))
	s.store, err = repos.NewStoreRepo(db).ByID(ctx, s.store.ID)
	require.NoError(t, err)
	return s
}

func addUser(t *testing.T, db *sqlx.DB, email, role string) *domain.User {
	t.Helper()
	ctx := context.Background()
	u := domain.User{
		ID: uuid.NewString(), Email: email, Hash: "x", Role: role,
		FullName: email, PreferredLanguage: "en", Active: true,
	}
	require.NoError(t, repos.NewUserRepo(db).Create(ctx, u))
	got, err := repos.NewUserRepo(db).ByID(ctx, u.ID)
	require.NoError(t, err)
	return got
}

func (s *shop) product(t *testing.T, name, price string, stock int) domain.Product {
	t.Helper()
	return s.productIn(t, s.store.ID, name, price, stock)
}

func (s *shop) productIn(t *testing.T, storeID, name, price string, stock int) domain.Product {
	t.Helper()
	p := domain.Product{
		ID: uuid.NewString(), StoreID: storeID, NameEn: name,
		Price: decimal.RequireFromString(price), StockQuantity: stock, Active: true,
	}
	require.NoError(t, repos.NewProductRepo(s.db).Create(context.Background(), p))
	return p
}

func (s *shop) stockOf(t *testing.T, productID string) int {
	t.Helper()
	p, err := repos.NewProductRepo(s.db).Get(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}

func (s *shop) setStock(t *testing.T, productID string, stock int) {
	t.Helper()
	require.NoError(t, repos.NewProductRepo(s.db).Update(context.Background(), productID,
		repos.ProductPatch{StockQuantity: &stock}))
}

// fill puts quantity units straight into the customer's cart, bypassing the
// stock check done by the cart service.
func (s *shop) fill(t *testing.T, customerID, productID string, quantity int) {
	t.Helper()
	ctx := context.Background()
	carts := repos.NewCartRepo(s.db)
	c, err := carts.GetOrCreate(ctx, s.store.ID, domain.Authenticated(customerID))
	require.NoError(t, err)
	require.NoError(t, carts.AddQuantity(ctx, c.ID, productID, quantity))
}

func (s *shop) cartLines(t *testing.T, customerID string) []domain.CartLine {
	t.Helper()
	ctx := context.Background()
	carts := repos.NewCartRepo(s.db)
	c, err := carts.Find(ctx, s.store.ID, domain.Authenticated(customerID))
	require.NoError(t, err)
	lines, err := carts.Lines(ctx, c.ID)
	require.NoError(t, err)
	return lines
}

func (s *shop) orderCount(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.Get(&n, `SELECT COUNT(*) FROM orders`))
	return n
}
