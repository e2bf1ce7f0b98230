package repository_test

import (
	"context"
	"testing"
	"time"

	"LittleLemon/dbtest"
	"LittleLemon/models"
	"LittleLemon/permission"
	"LittleLemon/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createOrder(t *testing.T, db *gorm.DB, user *models.User, item *models.MenuItem, quantity int) *models.Order {
	t.Helper()
	price := item.Price.Mul(decimal.NewFromInt(int64(quantity)))
	o := &models.Order{UserID: user.ID, Total: price, Date: time.Now()}
	items := []models.OrderItem{{MenuItemID: item.ID, Quantity: quantity, UnitPrice: item.Price, Price: price}}
	require.NoError(t, repository.NewOrderRepository(db).Create(context.Background(), o, items))
	return o
}

func TestOrderCreateAndFind(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.Customer(t, db, "alice")
	item := dbtest.CreateMenuItem(t, db, dbtest.CreateCategory(t, db, "Mains"), "Pasta", "4.10")
	orders := repository.NewOrderRepository(db)

	o := createOrder(t, db, alice, item, 7)
	require.Len(t, o.OrderItems, 1)
	assert.Equal(t, o.ID, o.OrderItems[0].OrderID)

	found, err := orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.User.Username)
	assert.Nil(t, found.DeliveryCrew)
	assert.Equal(t, "28.70", found.Total.StringFixed(2))
	require.Len(t, found.OrderItems, 1)
	assert.Equal(t, "Pasta", found.OrderItems[0].MenuItem.Title)

	ok, err := orders.Exists(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = orders.Exists(ctx, o.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrderListScopes(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.Customer(t, db, "alice")
	bob := dbtest.Customer(t, db, "bob")
	crew := dbtest.CreateUser(t, db, "dave", false, permission.DeliveryCrewGroup)
	item := dbtest.CreateMenuItem(t, db, dbtest.CreateCategory(t, db, "Mains"), "Pasta", "4.10")
	orders := repository.NewOrderRepository(db)

	a := createOrder(t, db, alice, item, 1)
	createOrder(t, db, bob, item, 2)
	require.NoError(t, orders.SetDeliveryCrew(ctx, a.ID, crew.ID))

	all, err := orders.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := orders.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, a.ID, own[0].ID)

	assigned, err := orders.ListByDeliveryCrew(ctx, crew.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, a.ID, assigned[0].ID)
	require.NotNil(t, assigned[0].DeliveryCrew)
	assert.Equal(t, "dave", assigned[0].DeliveryCrew.Username)
}

func TestOrderSetStatusAndDelete(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	alice := dbtest.Customer(t, db, "alice")
	item := dbtest.CreateMenuItem(t, db, dbtest.CreateCategory(t, db, "Mains"), "Pasta", "4.10")
	orders := repository.NewOrderRepository(db)
	o := createOrder(t, db, alice, item, 1)

	require.NoError(t, orders.SetStatus(ctx, o.ID, true))
	locked, err := orders.FindForUpdate(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, locked.Status)

	require.NoError(t, orders.SetStatus(ctx, o.ID, false))
	locked, err = orders.FindForUpdate(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, locked.Status)

	rows, err := orders.Delete(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	var items int64
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, items)

	rows, err = orders.Delete(ctx, o.ID)
	require.NoError(t, err)
	assert.Zero(t, rows)
}
