package services

import (
	"context"
	"fmt"
	"time"

	"LittleLemon/metrics"
	"LittleLemon/models"
	"LittleLemon/permission"
	"LittleLemon/pricing"
	"LittleLemon/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService struct {
	DB        *gorm.DB
	OrderRepo *repository.OrderRepository
	CartRepo  *repository.CartRepository
	Roles     permission.Lookup
	Now       func() time.Time
}

func NewOrderService(db *gorm.DB, or *repository.OrderRepository, cr *repository.CartRepository, roles permission.Lookup) *OrderService {
	return &OrderService{DB: db, OrderRepo: or, CartRepo: cr, Roles: roles, Now: time.Now}
}

// OrderUpdateIn carries the fields a PUT/PATCH on an order may set. Which one is
// honoured depends on the caller's view.
type OrderUpdateIn struct {
	DeliveryCrewID *uint `json:"delivery_crew_id" form:"delivery_crew_id"`
	Status         *bool `json:"status" form:"status"`
}

// PlaceOrder drains the user's cart into a new order in a single transaction.
// Either the order, its items and the emptied cart all become visible, or
// nothing changes.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint) (*models.Order, error) {
	var order *models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.CartRepo.WithTx(tx)
		if err := carts.LockOwner(ctx, userID); err != nil {
			return notFound(err, ErrUserNotFound, userID)
		}

		lines, err := carts.ListLines(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		prices := make([]decimal.Decimal, 0, len(lines))
		items := make([]models.OrderItem, 0, len(lines))
		lineIDs := make([]uint, 0, len(lines))
		for _, line := range lines {
			prices = append(prices, line.Price)
			lineIDs = append(lineIDs, line.ID)
			items = append(items, models.OrderItem{
				MenuItemID: line.MenuItemID,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				Price:      line.Price,
			})
		}

		total := pricing.Sum(prices)
		if err := pricing.CheckAmount(total); err != nil {
			return fmt.Errorf("%w: order total %w", ErrValidation, err)
		}

		orders := s.OrderRepo.WithTx(tx)
		header := &models.Order{
			UserID: userID,
			Status: false,
			Total:  total,
			Date:   s.Now(),
		}
		if err := orders.Create(ctx, header, items); err != nil {
			return err
		}

		deleted, err := carts.DeleteLines(ctx, userID, lineIDs)
		if err != nil {
			return err
		}
		if deleted != int64(len(lineIDs)) {
			return fmt.Errorf("%w: cart changed while the order was being placed", ErrConflict)
		}

		//read back with user and menu items before commit
		order, err = orders.FindByID(ctx, header.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordOrderPlaced(order.Total)
	return order, nil
}

// ListOrdersForCaller returns every order for managers and admins, own orders
// for customers, assigned orders for delivery crew and nothing for anyone else.
func (s *OrderService) ListOrdersForCaller(ctx context.Context, caller permission.Caller) ([]models.Order, error) {
	switch listScope(caller) {
	case scopeAll:
		return s.OrderRepo.ListAll(ctx)
	case scopeOwn:
		return s.OrderRepo.ListByUser(ctx, caller.UserID)
	case scopeAssigned:
		return s.OrderRepo.ListByDeliveryCrew(ctx, caller.UserID)
	default:
		return []models.Order{}, nil
	}
}

// ProbeOrder checks that an order exists without exposing any of its fields.
func (s *OrderService) ProbeOrder(ctx context.Context, orderID uint) (OrderProbeView, error) {
	ok, err := s.OrderRepo.Exists(ctx, orderID)
	if err != nil {
		return OrderProbeView{}, err
	}
	if !ok {
		return OrderProbeView{}, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	return OrderProbeView{ID: orderID}, nil
}

// GetOrder returns the order projected through the caller's view.
func (s *OrderService) GetOrder(ctx context.Context, caller permission.Caller, orderID uint) (OrderView, error) {
	if _, err := s.ProbeOrder(ctx, orderID); err != nil {
		return nil, err
	}

	order, err := s.OrderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, orderID)
	}
	if err := authorizeRetrieve(caller, order); err != nil {
		return nil, err
	}
	return NewOrderView(SelectOrderView(caller.Roles), order), nil
}

// UpdateOrder applies the one field the caller's view allows to change.
func (s *OrderService) UpdateOrder(ctx context.Context, caller permission.Caller, orderID uint, in OrderUpdateIn) (*models.Order, error) {
	switch SelectOrderView(caller.Roles) {
	case ManagerView:
		if in.DeliveryCrewID == nil || *in.DeliveryCrewID == 0 {
			return nil, validationError("'delivery_crew_id' is required")
		}
		return s.AssignDeliveryCrew(ctx, caller, orderID, *in.DeliveryCrewID)
	case DeliveryCrewView:
		if in.Status == nil {
			return nil, validationError("'status' is required")
		}
		return s.SetOrderStatus(ctx, caller, orderID, *in.Status)
	default:
		return nil, ErrForbidden
	}
}

// AssignDeliveryCrew sets the order's delivery crew. Only managers and admins
// may do this, and the target must belong to the Delivery Crew group.
func (s *OrderService) AssignDeliveryCrew(ctx context.Context, caller permission.Caller, orderID, crewID uint) (*models.Order, error) {
	if err := authorizeAssign(caller); err != nil {
		return nil, err
	}
	if crewID == 0 {
		return nil, validationError("'delivery_crew_id' is required")
	}
	if _, err := s.ProbeOrder(ctx, orderID); err != nil {
		return nil, err
	}

	roles, err := s.Roles.Roles(ctx, crewID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, crewID)
	}
	if !roles.Has(permission.DeliveryCrew) {
		return nil, fmt.Errorf("%w: user %d", ErrInvalidDeliveryCrew, crewID)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.OrderRepo.WithTx(tx)
		if _, err := orders.FindForUpdate(ctx, orderID); err != nil {
			return notFound(err, ErrOrderNotFound, orderID)
		}
		return orders.SetDeliveryCrew(ctx, orderID, crewID)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordOrderUpdate(string(FieldDeliveryCrew))
	return s.reload(ctx, orderID)
}

// SetOrderStatus marks the order complete or in progress. Only the delivery
// crew member assigned to the order may do this.
func (s *OrderService) SetOrderStatus(ctx context.Context, caller permission.Caller, orderID uint, status bool) (*models.Order, error) {
	if SelectOrderView(caller.Roles) != DeliveryCrewView {
		return nil, ErrForbidden
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.OrderRepo.WithTx(tx)
		order, err := orders.FindForUpdate(ctx, orderID)
		if err != nil {
			return notFound(err, ErrOrderNotFound, orderID)
		}
		if err := authorizeStatus(caller, order); err != nil {
			return err
		}
		return orders.SetStatus(ctx, orderID, status)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordOrderUpdate(string(FieldStatus))
	return s.reload(ctx, orderID)
}

// DeleteOrder removes an order and its items. Managers and admins only.
func (s *OrderService) DeleteOrder(ctx context.Context, caller permission.Caller, orderID uint) error {
	if err := authorizeDelete(caller); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.OrderRepo.WithTx(tx)
		if _, err := orders.FindForUpdate(ctx, orderID); err != nil {
			return notFound(err, ErrOrderNotFound, orderID)
		}
		_, err := orders.Delete(ctx, orderID)
		return err
	})
}

func (s *OrderService) reload(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.OrderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, orderID)
	}
	return order, nil
}
