package services

import (
	"time"

	"LittleLemon/models"
	"LittleLemon/permission"
)

// OrderField names an order attribute that can be written after placement.
type OrderField string

const (
	FieldDeliveryCrew OrderField = "delivery_crew_id"
	FieldStatus       OrderField = "status"
)

// ViewKind identifies one of the fixed projections of an order.
type ViewKind int

const (
	ProbeView ViewKind = iota
	ReadOnlyView
	ManagerView
	DeliveryCrewView
)

func (k ViewKind) String() string {
	switch k {
	case ProbeView:
		return "probe"
	case ReadOnlyView:
		return "read-only"
	case ManagerView:
		return "manager"
	case DeliveryCrewView:
		return "delivery-crew"
	}
	return "unknown"
}

// SelectOrderView picks the projection a caller with roles gets. Admins and
// managers win over delivery crew when a user holds both.
func SelectOrderView(roles permission.Set) ViewKind {
	switch {
	case roles.IsManagerOrAdmin():
		return ManagerView
	case roles.Has(permission.DeliveryCrew):
		return DeliveryCrewView
	default:
		return ReadOnlyView
	}
}

// OrderView is a role-specific projection of an order.
type OrderView interface {
	Kind() ViewKind
	WritableFields() []OrderField
}

// OrderProbeView exposes nothing but the fact that an order exists.
type OrderProbeView struct {
	ID uint `json:"id"`
}

func (OrderProbeView) Kind() ViewKind               { return ProbeView }
func (OrderProbeView) WritableFields() []OrderField { return nil }

type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type OrderItemView struct {
	MenuItemID uint   `json:"menuitem_id"`
	MenuItem   string `json:"menuitem"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	Price      string `json:"price"`
}

// OrderFields is the data every full order view carries.
type OrderFields struct {
	ID             uint            `json:"id"`
	User           UserSummary     `json:"user"`
	DeliveryCrew   *UserSummary    `json:"delivery_crew"`
	Status         bool            `json:"status"`
	Total          string          `json:"total"`
	Date           time.Time       `json:"date"`
	Items          []OrderItemView `json:"order_items"`
	Writable       []OrderField    `json:"writable_fields"`
	ReadOnlyFields []string        `json:"read_only_fields"`
}

type ReadOnlyOrderView struct{ OrderFields }

func (ReadOnlyOrderView) Kind() ViewKind               { return ReadOnlyView }
func (ReadOnlyOrderView) WritableFields() []OrderField { return []OrderField{} }

// ManagerOrderView lets managers and admins assign the delivery crew.
type ManagerOrderView struct{ OrderFields }

func (ManagerOrderView) Kind() ViewKind { return ManagerView }
func (ManagerOrderView) WritableFields() []OrderField {
	return []OrderField{FieldDeliveryCrew}
}

// DeliveryCrewOrderView lets the assigned crew member mark the order complete.
type DeliveryCrewOrderView struct{ OrderFields }

func (DeliveryCrewOrderView) Kind() ViewKind { return DeliveryCrewView }
func (DeliveryCrewOrderView) WritableFields() []OrderField {
	return []OrderField{FieldStatus}
}

var orderFieldNames = []string{"id", "user", "delivery_crew", "status", "total", "date", "order_items"}

func readOnlyFields(writable []OrderField) []string {
	fields := make([]string, 0, len(orderFieldNames))
	for _, name := range orderFieldNames {
		if (name == "delivery_crew" && hasField(writable, FieldDeliveryCrew)) ||
			(name == "status" && hasField(writable, FieldStatus)) {
			continue
		}
		fields = append(fields, name)
	}
	return fields
}

func hasField(fields []OrderField, f OrderField) bool {
	for _, field := range fields {
		if field == f {
			return true
		}
	}
	return false
}

func orderFields(o *models.Order, writable []OrderField) OrderFields {
	f := OrderFields{
		ID:             o.ID,
		User:           UserSummary{ID: o.UserID, Username: o.User.Username},
		Status:         o.Status,
		Total:          o.Total.StringFixed(2),
		Date:           o.Date,
		Items:          make([]OrderItemView, 0, len(o.OrderItems)),
		Writable:       writable,
		ReadOnlyFields: readOnlyFields(writable),
	}
	if o.DeliveryCrewID != nil {
		crew := UserSummary{ID: *o.DeliveryCrewID}
		if o.DeliveryCrew != nil {
			crew.Username = o.DeliveryCrew.Username
		}
		f.DeliveryCrew = &crew
	}
	for _, item := range o.OrderItems {
		f.Items = append(f.Items, OrderItemView{
			MenuItemID: item.MenuItemID,
			MenuItem:   item.MenuItem.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.StringFixed(2),
			Price:      item.Price.StringFixed(2),
		})
	}
	return f
}

// NewOrderView projects o through the view of the given kind.
func NewOrderView(kind ViewKind, o *models.Order) OrderView {
	switch kind {
	case ProbeView:
		return OrderProbeView{ID: o.ID}
	case ManagerView:
		v := ManagerOrderView{}
		v.OrderFields = orderFields(o, v.WritableFields())
		return v
	case DeliveryCrewView:
		v := DeliveryCrewOrderView{}
		v.OrderFields = orderFields(o, v.WritableFields())
		return v
	default:
		v := ReadOnlyOrderView{}
		v.OrderFields = orderFields(o, v.WritableFields())
		return v
	}
}

// NewOrderViews projects every order through the same view kind.
func NewOrderViews(kind ViewKind, orders []models.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, NewOrderView(kind, &orders[i]))
	}
	return views
}
