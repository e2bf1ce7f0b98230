// Package permission models the four roles of the ordering workflow as a
// capability set, so authorization decisions can be made without touching the
// membership store.
package permission

import "context"

// Group names as stored in the groups table.
const (
	ManagerGroup      = "Manager"
	DeliveryCrewGroup = "Delivery Crew"
	CustomerGroup     = "Customer"
)

type Role uint8

const (
	Admin Role = 1 << iota
	Manager
	Customer
	DeliveryCrew
)

var allRoles = []Role{Admin, Manager, Customer, DeliveryCrew}

func (r Role) String() string {
	switch r {
	case Admin:
		return "Admin"
	case Manager:
		return ManagerGroup
	case Customer:
		return CustomerGroup
	case DeliveryCrew:
		return DeliveryCrewGroup
	}
	return "Unknown"
}

// RoleForGroup maps a group name onto its role. Admin has no group; it comes
// from the user's superuser flag.
func RoleForGroup(name string) (Role, bool) {
	switch name {
	case ManagerGroup:
		return Manager, true
	case CustomerGroup:
		return Customer, true
	case DeliveryCrewGroup:
		return DeliveryCrew, true
	}
	return 0, false
}

// Set is a bit set of roles held by one user.
type Set uint8

func NewSet(roles ...Role) Set {
	var s Set
	for _, r := range roles {
		s = s.With(r)
	}
	return s
}

func (s Set) With(r Role) Set {
	return s | Set(r)
}

func (s Set) Has(r Role) bool {
	return s&Set(r) != 0
}

// Any reports whether s holds at least one of roles.
func (s Set) Any(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

func (s Set) IsManagerOrAdmin() bool {
	return s.Any(Admin, Manager)
}

func (s Set) Names() []string {
	names := make([]string, 0, len(allRoles))
	for _, r := range allRoles {
		if s.Has(r) {
			names = append(names, r.String())
		}
	}
	return names
}

// Caller is the authenticated user behind a request.
type Caller struct {
	UserID uint
	Roles  Set
}

func (c Caller) Is(r Role) bool {
	return c.Roles.Has(r)
}

// Lookup resolves role membership for a user.
type Lookup interface {
	HasRole(ctx context.Context, userID uint, group string) (bool, error)
	IsAdmin(ctx context.Context, userID uint) (bool, error)
	Roles(ctx context.Context, userID uint) (Set, error)
}
