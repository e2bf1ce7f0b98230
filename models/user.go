package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username    string  `gorm:"size:150;uniqueIndex;not null"`
	Email       string  `gorm:"size:255"`
	Password    string  `gorm:"not null" json:"-"`
	FirstName   string  `gorm:"size:150"`
	LastName    string  `gorm:"size:150"`
	IsAdmin     bool    `gorm:"not null"`
	Groups      []Group `gorm:"many2many:auth_user_groups;"`
	LoginTokens []LoginToken
}
