package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"LittleLemon/dbtest"
	"LittleLemon/models"
	"LittleLemon/permission"
	"LittleLemon/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	env      *testEnv
	customer *models.User
	other    *models.User
	manager  *models.User
	admin    *models.User
	crew     *models.User
	crew2    *models.User
	item     *models.MenuItem
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	env := newTestEnv(t)
	return &orderFixture{
		env:      env,
		customer: dbtest.Customer(t, env.db, "alice"),
		other:    dbtest.Customer(t, env.db, "bob"),
		manager:  dbtest.CreateUser(t, env.db, "mia", false, permission.ManagerGroup),
		admin:    dbtest.CreateUser(t, env.db, "root", true),
		crew:     dbtest.CreateUser(t, env.db, "dave", false, permission.DeliveryCrewGroup),
		crew2:    dbtest.CreateUser(t, env.db, "erin", false, permission.DeliveryCrewGroup),
		item:     dbtest.CreateMenuItem(t, env.db, dbtest.CreateCategory(t, env.db, "Mains"), "Pasta", "4.10"),
	}
}

func (f *orderFixture) place(t *testing.T, user *models.User, quantity int) *models.Order {
	t.Helper()
	ctx := context.Background()
	_, _, err := f.env.carts.AddItem(ctx, user.ID, AddToCartIn{MenuItemID: f.item.ID, Quantity: qty(quantity)})
	require.NoError(t, err)
	order, err := f.env.orders.PlaceOrder(ctx, user.ID)
	require.NoError(t, err)
	return order
}

func TestPlaceOrderMaterializesCart(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f.env.orders.Now = func() time.Time { return now }
	soup := dbtest.CreateMenuItem(t, f.env.db, &f.item.Category, "Soup", "2.00")

	_, _, err := f.env.carts.AddItem(ctx, f.customer.ID, AddToCartIn{MenuItemID: f.item.ID, Quantity: qty(7)})
	require.NoError(t, err)
	_, _, err = f.env.carts.AddItem(ctx, f.customer.ID, AddToCartIn{MenuItemID: soup.ID, Quantity: qty(2)})
	require.NoError(t, err)

	order, err := f.env.orders.PlaceOrder(ctx, f.customer.ID)
	require.NoError(t, err)

	assert.Equal(t, f.customer.ID, order.UserID)
	assert.Equal(t, "alice", order.User.Username)
	assert.False(t, order.Status)
	assert.Nil(t, order.DeliveryCrewID)
	assert.True(t, order.Date.Equal(now))
	assert.Equal(t, "32.70", order.Total.StringFixed(2))
	require.Len(t, order.OrderItems, 2)
	assert.Equal(t, 7, order.OrderItems[0].Quantity)
	assert.Equal(t, "4.10", order.OrderItems[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "28.70", order.OrderItems[0].Price.StringFixed(2))
	assert.Equal(t, "Soup", order.OrderItems[1].MenuItem.Title)

	lines, err := f.env.carts.ListItems(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.env.orders.PlaceOrder(ctx, f.customer.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)

	var count int64
	require.NoError(t, f.env.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrderRollsBackOnFailure(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	_, _, err := f.env.carts.AddItem(ctx, f.customer.ID, AddToCartIn{MenuItemID: f.item.ID, Quantity: qty(2)})
	require.NoError(t, err)

	//items can no longer be written, so the header insert must be undone too
	require.NoError(t, f.env.db.Migrator().DropTable(&models.OrderItem{}))

	_, err = f.env.orders.PlaceOrder(ctx, f.customer.ID)
	require.Error(t, err)

	var count int64
	require.NoError(t, f.env.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)

	lines, err := f.env.carts.ListItems(ctx, f.customer.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestPlaceOrderRejectsTotalAboveLimit(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	mains := &f.item.Category
	for _, title := range []string{"Truffle", "Caviar"} {
		item := dbtest.CreateMenuItem(t, f.env.db, mains, title, "60000000.00")
		_, _, err := f.env.carts.AddItem(ctx, f.customer.ID, AddToCartIn{MenuItemID: item.ID, Quantity: qty(1)})
		require.NoError(t, err)
	}

	_, err := f.env.orders.PlaceOrder(ctx, f.customer.ID)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, pricing.ErrAmountTooLarge)

	var count int64
	require.NoError(t, f.env.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	lines, err := f.env.carts.ListItems(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestPlaceOrderReadsResultInsideTransaction(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	_, _, err := f.env.carts.AddItem(ctx, f.customer.ID, AddToCartIn{MenuItemID: f.item.ID, Quantity: qty(2)})
	require.NoError(t, err)

	//once committed, a failing read must not turn a placed order into an error
	require.NoError(t, f.env.db.Callback().Query().Before("gorm:query").Register("test:orders_outside_tx", func(db *gorm.DB) {
		if db.Statement.Table != "orders" {
			return
		}
		if _, inTx := db.Statement.ConnPool.(gorm.TxCommitter); !inTx {
			_ = db.AddError(errors.New("orders read outside a transaction"))
		}
	}))

	order, err := f.env.orders.PlaceOrder(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "8.20", order.Total.StringFixed(2))
	assert.Equal(t, "alice", order.User.Username)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, "Pasta", order.OrderItems[0].MenuItem.Title)

	lines, err := f.env.carts.ListItems(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestListOrdersForCaller(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	a := f.place(t, f.customer, 1)
	b := f.place(t, f.other, 2)
	_, err := f.env.orders.AssignDeliveryCrew(ctx, callerOf(f.manager, permission.Manager), b.ID, f.crew.ID)
	require.NoError(t, err)

	ids := func(orders []models.Order) []uint {
		out := make([]uint, 0, len(orders))
		for _, o := range orders {
			out = append(out, o.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		caller permission.Caller
		want   []uint
	}{
		{"manager sees all", callerOf(f.manager, permission.Manager), []uint{a.ID, b.ID}},
		{"admin sees all", callerOf(f.admin, permission.Admin), []uint{a.ID, b.ID}},
		{"customer sees own", callerOf(f.customer, permission.Customer), []uint{a.ID}},
		{"crew sees assigned", callerOf(f.crew, permission.DeliveryCrew), []uint{b.ID}},
		{"other crew sees none", callerOf(f.crew2, permission.DeliveryCrew), []uint{}},
		{"no role sees none", permission.Caller{UserID: f.customer.ID}, []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := f.env.orders.ListOrdersForCaller(ctx, tt.caller)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(orders))
		})
	}
}

func TestGetOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t, f.customer, 3)
	_, err := f.env.orders.AssignDeliveryCrew(ctx, callerOf(f.admin, permission.Admin), order.ID, f.crew.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		caller permission.Caller
		kind   ViewKind
		err    error
	}{
		{"owner", callerOf(f.customer, permission.Customer), ReadOnlyView, nil},
		{"other customer", callerOf(f.other, permission.Customer), 0, ErrForbidden},
		{"manager", callerOf(f.manager, permission.Manager), ManagerView, nil},
		{"admin", callerOf(f.admin, permission.Admin), ManagerView, nil},
		{"assigned crew", callerOf(f.crew, permission.DeliveryCrew), DeliveryCrewView, nil},
		{"unassigned crew", callerOf(f.crew2, permission.DeliveryCrew), 0, ErrForbidden},
		{"no role", permission.Caller{UserID: f.customer.ID}, 0, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := f.env.orders.GetOrder(ctx, tt.caller, order.ID)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, view.Kind())
		})
	}

	_, err = f.env.orders.GetOrder(ctx, callerOf(f.customer, permission.Customer), order.ID+100)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAssignDeliveryCrew(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t, f.customer, 1)
	manager := callerOf(f.manager, permission.Manager)

	updated, err := f.env.orders.AssignDeliveryCrew(ctx, manager, order.ID, f.crew.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.DeliveryCrewID)
	assert.Equal(t, f.crew.ID, *updated.DeliveryCrewID)
	assert.Equal(t, "dave", updated.DeliveryCrew.Username)

	//re-assigning the same member is a no-op
	updated, err = f.env.orders.AssignDeliveryCrew(ctx, manager, order.ID, f.crew.ID)
	require.NoError(t, err)
	assert.Equal(t, f.crew.ID, *updated.DeliveryCrewID)

	tests := []struct {
		name    string
		caller  permission.Caller
		orderID uint
		crewID  uint
		err     error
	}{
		{"customer", callerOf(f.customer, permission.Customer), order.ID, f.crew2.ID, ErrForbidden},
		{"delivery crew", callerOf(f.crew, permission.DeliveryCrew), order.ID, f.crew2.ID, ErrForbidden},
		{"missing crew id", manager, order.ID, 0, ErrValidation},
		{"unknown order", manager, order.ID + 100, f.crew2.ID, ErrOrderNotFound},
		{"unknown user", manager, order.ID, 9999, ErrUserNotFound},
		{"not delivery crew", manager, order.ID, f.other.ID, ErrInvalidDeliveryCrew},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.env.orders.AssignDeliveryCrew(ctx, tt.caller, tt.orderID, tt.crewID)
			assert.ErrorIs(t, err, tt.err)

			stored, err := f.env.orders.OrderRepo.FindByID(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, f.crew.ID, *stored.DeliveryCrewID)
		})
	}
}

func TestSetOrderStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t, f.customer, 1)
	_, err := f.env.orders.AssignDeliveryCrew(ctx, callerOf(f.manager, permission.Manager), order.ID, f.crew.ID)
	require.NoError(t, err)

	updated, err := f.env.orders.SetOrderStatus(ctx, callerOf(f.crew, permission.DeliveryCrew), order.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Status)

	tests := []struct {
		name    string
		caller  permission.Caller
		orderID uint
		err     error
	}{
		{"unassigned crew", callerOf(f.crew2, permission.DeliveryCrew), order.ID, ErrForbidden},
		{"manager", callerOf(f.manager, permission.Manager), order.ID, ErrForbidden},
		{"manager also crew", callerOf(f.crew, permission.Manager, permission.DeliveryCrew), order.ID, ErrForbidden},
		{"customer", callerOf(f.customer, permission.Customer), order.ID, ErrForbidden},
		{"unknown order", callerOf(f.crew, permission.DeliveryCrew), order.ID + 100, ErrOrderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.env.orders.SetOrderStatus(ctx, tt.caller, tt.orderID, false)
			assert.ErrorIs(t, err, tt.err)

			stored, err := f.env.orders.OrderRepo.FindByID(ctx, order.ID)
			require.NoError(t, err)
			assert.True(t, stored.Status)
		})
	}
}

func TestUpdateOrderDispatchesByView(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t, f.customer, 1)
	crewID := f.crew.ID
	done := true

	//a manager's status is ignored; only the crew assignment applies
	updated, err := f.env.orders.UpdateOrder(ctx, callerOf(f.manager, permission.Manager), order.ID,
		OrderUpdateIn{DeliveryCrewID: &crewID, Status: &done})
	require.NoError(t, err)
	assert.Equal(t, f.crew.ID, *updated.DeliveryCrewID)
	assert.False(t, updated.Status)

	_, err = f.env.orders.UpdateOrder(ctx, callerOf(f.manager, permission.Manager), order.ID, OrderUpdateIn{Status: &done})
	assert.ErrorIs(t, err, ErrValidation)

	//the crew member's crew id is ignored; only the status applies
	otherCrew := f.crew2.ID
	updated, err = f.env.orders.UpdateOrder(ctx, callerOf(f.crew, permission.DeliveryCrew), order.ID,
		OrderUpdateIn{DeliveryCrewID: &otherCrew, Status: &done})
	require.NoError(t, err)
	assert.True(t, updated.Status)
	assert.Equal(t, f.crew.ID, *updated.DeliveryCrewID)

	_, err = f.env.orders.UpdateOrder(ctx, callerOf(f.crew, permission.DeliveryCrew), order.ID, OrderUpdateIn{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.env.orders.UpdateOrder(ctx, callerOf(f.customer, permission.Customer), order.ID, OrderUpdateIn{Status: &done})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t, f.customer, 2)

	err := f.env.orders.DeleteOrder(ctx, callerOf(f.customer, permission.Customer), order.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	err = f.env.orders.DeleteOrder(ctx, callerOf(f.crew, permission.DeliveryCrew), order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.env.orders.DeleteOrder(ctx, callerOf(f.manager, permission.Manager), order.ID))

	var items int64
	require.NoError(t, f.env.db.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, items)

	err = f.env.orders.DeleteOrder(ctx, callerOf(f.admin, permission.Admin), order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestEndToEndScenario(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	customer := callerOf(f.customer, permission.Customer)

	_, created, err := f.env.carts.AddItem(ctx, f.customer.ID, AddToCartIn{MenuItemID: f.item.ID, Quantity: qty(3)})
	require.NoError(t, err)
	assert.True(t, created)
	line, created, err := f.env.carts.AddItem(ctx, f.customer.ID, AddToCartIn{MenuItemID: f.item.ID, Quantity: qty(4)})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 7, line.Quantity)
	assert.Equal(t, "28.70", line.Price.StringFixed(2))

	order, err := f.env.orders.PlaceOrder(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "28.70", order.Total.StringFixed(2))

	_, err = f.env.orders.UpdateOrder(ctx, callerOf(f.manager, permission.Manager), order.ID,
		OrderUpdateIn{DeliveryCrewID: &f.crew.ID})
	require.NoError(t, err)

	done := true
	_, err = f.env.orders.UpdateOrder(ctx, callerOf(f.crew, permission.DeliveryCrew), order.ID, OrderUpdateIn{Status: &done})
	require.NoError(t, err)

	view, err := f.env.orders.GetOrder(ctx, customer, order.ID)
	require.NoError(t, err)
	readOnly, ok := view.(ReadOnlyOrderView)
	require.True(t, ok)
	assert.Empty(t, readOnly.WritableFields())
	assert.True(t, readOnly.Status)
	require.NotNil(t, readOnly.DeliveryCrew)
	assert.Equal(t, "dave", readOnly.DeliveryCrew.Username)
	assert.Equal(t, "28.70", readOnly.Total)

	_, err = f.env.orders.UpdateOrder(ctx, customer, order.ID, OrderUpdateIn{Status: &done})
	assert.ErrorIs(t, err, ErrForbidden)
}
