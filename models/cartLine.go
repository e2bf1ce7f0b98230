package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one pending (user, menu item) line. UnitPrice is captured on the
// first insertion and never re-read from the catalog afterwards.
type CartLine struct {
	ID         uint            `gorm:"primaryKey"`
	UserID     uint            `gorm:"not null;uniqueIndex:idx_cart_user_menu_item"`
	User       User            `gorm:"constraint:OnDelete:CASCADE"`
	MenuItemID uint            `gorm:"not null;uniqueIndex:idx_cart_user_menu_item"`
	MenuItem   MenuItem        `gorm:"constraint:OnDelete:CASCADE"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (CartLine) TableName() string {
	return "carts"
}
