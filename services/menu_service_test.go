package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"LittleLemon/dbtest"
	"LittleLemon/models"
	"LittleLemon/permission"
	"LittleLemon/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache keeps the menu in memory ordered by id.
type fakeCache struct {
	items   []models.MenuItem
	warm    bool
	fills   int
	failPut bool
	readErr error
	onPut   func(models.MenuItem)
}

func (c *fakeCache) Page(_ context.Context, offset, limit int) ([]models.MenuItem, int64, error) {
	if c.readErr != nil {
		return nil, 0, c.readErr
	}
	if !c.warm {
		return nil, 0, nil
	}
	end := offset + limit
	if offset > len(c.items) {
		offset = len(c.items)
	}
	if end > len(c.items) {
		end = len(c.items)
	}
	return append([]models.MenuItem(nil), c.items[offset:end]...), int64(len(c.items)), nil
}

func (c *fakeCache) Fill(_ context.Context, items []models.MenuItem) error {
	c.fills++
	c.items = append([]models.MenuItem(nil), items...)
	c.warm = len(items) > 0
	return nil
}

func (c *fakeCache) Put(_ context.Context, item models.MenuItem) error {
	if c.onPut != nil {
		c.onPut(item)
	}
	if c.failPut {
		return errors.New("redis down")
	}
	if !c.warm {
		return nil
	}
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i] = item
			return nil
		}
	}
	c.items = append(c.items, item)
	return nil
}

func (c *fakeCache) Remove(_ context.Context, id uint) error {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.items, c.warm = nil, false
	return nil
}

func strPtr(s string) *string { return &s }

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestMenuListUsesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cache := &fakeCache{}
	env.menu.Cache = cache
	mains := dbtest.CreateCategory(t, env.db, "Mains")
	for _, title := range []string{"Pasta", "Soup", "Steak"} {
		dbtest.CreateMenuItem(t, env.db, mains, title, "4.10")
	}

	page, err := env.menu.List(ctx, repository.MenuFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Soup", page.Items[0].Title)
	assert.Equal(t, 1, cache.fills)

	//second read is served from the cache
	page, err = env.menu.List(ctx, repository.MenuFilter{Offset: 2, Limit: 5})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Steak", page.Items[0].Title)
	assert.Equal(t, 1, cache.fills)

	//category filters go to the database
	page, err = env.menu.List(ctx, repository.MenuFilter{Category: "Mains"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, cache.fills)
}

func TestMenuListFallsBackWhenCacheFails(t *testing.T) {
	env := newTestEnv(t)
	cache := &fakeCache{readErr: errors.New("redis down")}
	env.menu.Cache = cache
	dbtest.CreateMenuItem(t, env.db, dbtest.CreateCategory(t, env.db, "Mains"), "Pasta", "4.10")

	page, err := env.menu.List(context.Background(), repository.MenuFilter{Offset: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Empty(t, page.Items)
}

func TestClampPage(t *testing.T) {
	offset, limit := ClampPage(-1, 0)
	assert.Equal(t, 0, offset)
	assert.Equal(t, DefaultPageSize, limit)

	_, limit = ClampPage(0, 500)
	assert.Equal(t, MaxPageSize, limit)
}

func TestMenuCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mains := dbtest.CreateCategory(t, env.db, "Mains")
	missing := uint(999)

	tests := []struct {
		name string
		in   MenuItemIn
		err  error
	}{
		{"missing title", MenuItemIn{Price: price("1.00"), CategoryID: &mains.ID}, ErrValidation},
		{"missing price", MenuItemIn{Title: strPtr("Tea"), CategoryID: &mains.ID}, ErrValidation},
		{"negative price", MenuItemIn{Title: strPtr("Tea"), Price: price("-0.01"), CategoryID: &mains.ID}, ErrValidation},
		{"price above column limit", MenuItemIn{Title: strPtr("Tea"), Price: price("100000000.00"), CategoryID: &mains.ID}, ErrValidation},
		{"missing category", MenuItemIn{Title: strPtr("Tea"), Price: price("1.00")}, ErrValidation},
		{"unknown category", MenuItemIn{Title: strPtr("Tea"), Price: price("1.00"), CategoryID: &missing}, ErrCategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.menu.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	item, err := env.menu.Create(ctx, MenuItemIn{Title: strPtr(" Tea "), Price: price("0"), CategoryID: &mains.ID})
	require.NoError(t, err)
	assert.Equal(t, "Tea", item.Title)
	assert.Equal(t, "0.00", item.Price.StringFixed(2))
	assert.Equal(t, "Mains", item.Category.Title)
}

func TestMenuCacheIsWrittenAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mains := dbtest.CreateCategory(t, env.db, "Mains")
	pasta := dbtest.CreateMenuItem(t, env.db, mains, "Pasta", "4.10")

	//the row must be readable outside the write transaction when the cache sees it
	var visible []error
	cache := &fakeCache{warm: true, onPut: func(item models.MenuItem) {
		readCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		var stored models.MenuItem
		visible = append(visible, env.db.WithContext(readCtx).First(&stored, item.ID).Error)
	}}
	env.menu.Cache = cache

	created, err := env.menu.Create(ctx, MenuItemIn{Title: strPtr("Tea"), Price: price("1.00"), CategoryID: &mains.ID})
	require.NoError(t, err)
	admin := permission.Caller{UserID: 1, Roles: permission.NewSet(permission.Admin)}
	_, err = env.menu.Update(ctx, admin, pasta.ID, MenuItemIn{Price: price("5.00")})
	require.NoError(t, err)

	require.Len(t, visible, 2)
	for _, err := range visible {
		assert.NoError(t, err)
	}
	require.Len(t, cache.items, 2)
	assert.Equal(t, created.ID, cache.items[0].ID)
	assert.Equal(t, pasta.ID, cache.items[1].ID)
	assert.Equal(t, "5.00", cache.items[1].Price.StringFixed(2))
}

func TestMenuCreateDropsCacheWhenCacheWriteFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cache := &fakeCache{warm: true, failPut: true}
	env.menu.Cache = cache
	mains := dbtest.CreateCategory(t, env.db, "Mains")

	item, err := env.menu.Create(ctx, MenuItemIn{Title: strPtr("Tea"), Price: price("1.00"), CategoryID: &mains.ID})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)

	var count int64
	require.NoError(t, env.db.Model(&models.MenuItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.False(t, cache.warm)
}

func TestMenuUpdateByRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mains := dbtest.CreateCategory(t, env.db, "Mains")
	item := dbtest.CreateMenuItem(t, env.db, mains, "Pasta", "4.10")
	manager := permission.Caller{UserID: 1, Roles: permission.NewSet(permission.Manager)}
	admin := permission.Caller{UserID: 2, Roles: permission.NewSet(permission.Admin)}
	customer := permission.Caller{UserID: 3, Roles: permission.NewSet(permission.Customer)}
	featured := true

	updated, err := env.menu.Update(ctx, manager, item.ID, MenuItemIn{Title: strPtr("Renamed"), Price: price("1.00"), Featured: &featured})
	require.NoError(t, err)
	assert.True(t, updated.Featured)
	assert.Equal(t, "Pasta", updated.Title)
	assert.Equal(t, "4.10", updated.Price.StringFixed(2))

	updated, err = env.menu.Update(ctx, admin, item.ID, MenuItemIn{Title: strPtr("Penne"), Price: price("5.25")})
	require.NoError(t, err)
	assert.Equal(t, "Penne", updated.Title)
	assert.Equal(t, "5.25", updated.Price.StringFixed(2))
	assert.True(t, updated.Featured)

	_, err = env.menu.Update(ctx, admin, item.ID, MenuItemIn{Price: price("-1")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.menu.Update(ctx, customer, item.ID, MenuItemIn{Featured: &featured})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.menu.Update(ctx, admin, item.ID+100, MenuItemIn{Featured: &featured})
	assert.ErrorIs(t, err, ErrMenuItemNotFound)
}

func TestMenuDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cache := &fakeCache{}
	env.menu.Cache = cache
	alice := dbtest.Customer(t, env.db, "alice")
	mains := dbtest.CreateCategory(t, env.db, "Mains")
	pasta := dbtest.CreateMenuItem(t, env.db, mains, "Pasta", "4.10")
	soup := dbtest.CreateMenuItem(t, env.db, mains, "Soup", "2.00")

	_, err := env.menu.List(ctx, repository.MenuFilter{})
	require.NoError(t, err)
	require.Len(t, cache.items, 2)

	_, _, err = env.carts.AddItem(ctx, alice.ID, AddToCartIn{MenuItemID: pasta.ID, Quantity: qty(1)})
	require.NoError(t, err)
	require.NoError(t, env.menu.Delete(ctx, pasta.ID))
	assert.Len(t, cache.items, 1)

	lines, err := env.carts.ListItems(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	assert.ErrorIs(t, env.menu.Delete(ctx, pasta.ID), ErrMenuItemNotFound)

	_, _, err = env.carts.AddItem(ctx, alice.ID, AddToCartIn{MenuItemID: soup.ID, Quantity: qty(1)})
	require.NoError(t, err)
	_, err = env.orders.PlaceOrder(ctx, alice.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, env.menu.Delete(ctx, soup.ID), ErrValidation)
}
