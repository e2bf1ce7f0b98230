package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID             uint `gorm:"primaryKey"`
	UserID         uint `gorm:"not null;index"`
	User           User
	DeliveryCrewID *uint `gorm:"index"`
	DeliveryCrew   *User
	Status         bool            `gorm:"not null;index"`
	Total          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Date           time.Time       `gorm:"not null;index"`
	OrderItems     []OrderItem     `gorm:"constraint:OnDelete:CASCADE"`
}

// IsAssignedTo reports whether userID is the delivery crew member of the order.
func (o *Order) IsAssignedTo(userID uint) bool {
	return o.DeliveryCrewID != nil && *o.DeliveryCrewID == userID
}
