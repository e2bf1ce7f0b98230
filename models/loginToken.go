package models

import (
	"gorm.io/gorm"
	"time"
)

type LoginToken struct {
	gorm.Model
	Token          string `gorm:"size:512;index"`
	ExpirationTime time.Time
	UserID         uint
}
