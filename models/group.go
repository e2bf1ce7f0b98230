package models

type Group struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"size:150;uniqueIndex;not null"`
	Users []User `gorm:"many2many:auth_user_groups;"`
}

// "groups" is reserved in MySQL 8.
func (Group) TableName() string {
	return "auth_groups"
}
