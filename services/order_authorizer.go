package services

import (
	"LittleLemon/models"
	"LittleLemon/permission"
)

// The functions below decide who may touch an order. They only look at the
// caller's role set and the order header, so they need no store.

type orderScope int

const (
	scopeNone orderScope = iota
	scopeAll
	scopeOwn
	scopeAssigned
)

// listScope decides which orders a caller sees in the order list.
func listScope(caller permission.Caller) orderScope {
	switch {
	case caller.Roles.IsManagerOrAdmin():
		return scopeAll
	case caller.Is(permission.Customer):
		return scopeOwn
	case caller.Is(permission.DeliveryCrew):
		return scopeAssigned
	default:
		return scopeNone
	}
}

func authorizeRetrieve(caller permission.Caller, o *models.Order) error {
	switch {
	case caller.Roles.IsManagerOrAdmin():
		return nil
	case caller.Is(permission.Customer) && o.UserID == caller.UserID:
		return nil
	case caller.Is(permission.DeliveryCrew) && o.IsAssignedTo(caller.UserID):
		return nil
	}
	return ErrForbidden
}

func authorizeAssign(caller permission.Caller) error {
	if SelectOrderView(caller.Roles) != ManagerView {
		return ErrForbidden
	}
	return nil
}

// authorizeStatus allows only the crew member assigned to o.
func authorizeStatus(caller permission.Caller, o *models.Order) error {
	if SelectOrderView(caller.Roles) != DeliveryCrewView || !o.IsAssignedTo(caller.UserID) {
		return ErrForbidden
	}
	return nil
}

func authorizeDelete(caller permission.Caller) error {
	if !caller.Roles.IsManagerOrAdmin() {
		return ErrForbidden
	}
	return nil
}
