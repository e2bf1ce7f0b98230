package models

import "github.com/shopspring/decimal"

type MenuItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Title      string          `gorm:"size:255;not null;index" json:"title"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Featured   bool            `gorm:"not null;index" json:"featured"`
	CategoryID uint            `gorm:"not null" json:"-"`
	Category   Category        `json:"category"`
}
