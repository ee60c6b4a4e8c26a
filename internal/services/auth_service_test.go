package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storelaunch/internal/domain"
	"storelaunch/internal/repos"
	"storelaunch/internal/services"
)

// memCache is an in-process SessionCache for tests.
type memCache struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemCache() *memCache { return &memCache{m: map[string]string{}} }

func (c *memCache) Get(_ context.Context, token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	uid, ok := c.m[token]
	return uid, ok
}

func (c *memCache) Set(_ context.Context, token, userID string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[token] = userID
}

func (c *memCache) Delete(_ context.Context, tokens ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tokens {
		delete(c.m, t)
	}
}

func TestAuth_RegisterOwnerCreatesStore(t *testing.T) {
	s := memShop(t)
	auth := services.NewAuthService(s.db, time.Hour, nil)
	ctx := context.Background()

	u, tok, err := auth.Register(ctx, services.Registration{
		Email: "Noura.Owner@Example.com", Password: "Str0ng!pass", FullName: "Noura", Role: domain.RoleStoreOwner,
	})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.Equal(t, "noura.owner@example.com", u.Email)
	assert.Equal(t, "en", u.PreferredLanguage)

	stores, err := repos.NewStoreRepo(s.db).ListByOwner(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.True(t, strings.HasPrefix(stores[0].Slug, "nouraowner-"))
	assert.Equal(t, "basic", stores[0].SubscriptionPlan)

	me, err := auth.CurrentUser(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	_, _, err = auth.Register(ctx, services.Registration{
		Email: "noura.owner@example.com", Password: "Str0ng!pass", Role: domain.RoleCustomer,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = auth.Register(ctx, services.Registration{Email: "x@example.com", Password: "Str0ng!pass", Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuth_LoginLogout(t *testing.T) {
	s := memShop(t)
	cache := newMemCache()
	auth := services.NewAuthService(s.db, time.Hour, cache)
	ctx := context.Background()

	_, _, err := auth.Login(ctx, repos.AdminEmail, "wrong", "")
	assert.ErrorIs(t, err, services.ErrBadCreds)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = auth.Login(ctx, "nobody@example.com", "Admin@123", "")
	assert.ErrorIs(t, err, services.ErrBadCreds)

	u, tok, err := auth.Login(ctx, " ADMIN@storelaunch.sa ", "Admin@123", "")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	uid, ok := cache.Get(ctx, tok)
	assert.True(t, ok)
	assert.Equal(t, u.ID, uid)

	require.NoError(t, auth.Logout(ctx, tok))
	_, ok = cache.Get(ctx, tok)
	assert.False(t, ok)
	_, err = auth.CurrentUser(ctx, tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuth_LoginAdoptsAnonymousCart(t *testing.T) {
	s := memShop(t)
	auth := services.NewAuthService(s.db, time.Hour, nil)
	carts := services.NewCartService(s.db)
	ctx := context.Background()
	p := s.product(t, "Maamoul", "6.00", 20)

	_, tok, err := auth.Register(ctx, services.Registration{Email: "lina@example.com", Password: "Str0ng!pass", Role: domain.RoleCustomer})
	require.NoError(t, err)
	me, err := auth.CurrentUser(ctx, tok)
	require.NoError(t, err)

	_, err = carts.AddItem(ctx, s.store.ID, domain.Authenticated(me.ID), p.ID, 1)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, s.store.ID, domain.Anonymous("tab-1"), p.ID, 2)
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "lina@example.com", "Str0ng!pass", "tab-1")
	require.NoError(t, err)

	v, err := carts.View(ctx, s.store.ID, domain.Authenticated(me.ID))
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 3, v.Items[0].Quantity)

	_, err = repos.NewCartRepo(s.db).Find(ctx, s.store.ID, domain.Anonymous("tab-1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuth_DeactivatedUserLosesAccess(t *testing.T) {
	s := memShop(t)
	cache := newMemCache()
	auth := services.NewAuthService(s.db, time.Hour, cache)
	admin := services.NewAdminService(s.db, auth)
	ctx := context.Background()

	_, tok, err := auth.Register(ctx, services.Registration{Email: "omar@example.com", Password: "Str0ng!pass", Role: domain.RoleCustomer})
	require.NoError(t, err)
	u, err := auth.CurrentUser(ctx, tok)
	require.NoError(t, err)

	got, err := admin.SetUserActive(ctx, s.admin, u.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Active)
	_, ok := cache.Get(ctx, tok)
	assert.False(t, ok)
	_, err = auth.CurrentUser(ctx, tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, _, err = auth.Login(ctx, "omar@example.com", "Str0ng!pass", "")
	assert.ErrorIs(t, err, services.ErrBadCreds)

	log, err := admin.AuditLog(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, log)
	assert.Equal(t, "user_update", log[0].Action)
	assert.Equal(t, u.ID, log[0].EntityID)
}

func TestAuth_UpdateProfile(t *testing.T) {
	s := memShop(t)
	auth := services.NewAuthService(s.db, time.Hour, nil)
	ctx := context.Background()

	name, lang := "Customer One", "ar"
	u, err := auth.UpdateProfile(ctx, s.customer.ID, services.ProfileUpdate{FullName: &name, PreferredLanguage: &lang})
	require.NoError(t, err)
	assert.Equal(t, name, u.FullName)
	assert.Equal(t, "ar", u.PreferredLanguage)

	bad := "fr"
	_, err = auth.UpdateProfile(ctx, s.customer.ID, services.ProfileUpdate{PreferredLanguage: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
