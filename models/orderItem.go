package models

import "github.com/shopspring/decimal"

// OrderItem is the priced snapshot of a cart line taken when the order was placed.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey"`
	OrderID    uint            `gorm:"not null;uniqueIndex:idx_order_item_menu_item"`
	MenuItemID uint            `gorm:"not null;uniqueIndex:idx_order_item_menu_item"`
	MenuItem   MenuItem
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}
