package models

type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Slug  string `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Title string `gorm:"size:255;uniqueIndex;not null" json:"title"`
}
