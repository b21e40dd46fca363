package models

import "time"

// Category groups products. Its name is unique and products keep a
// reference to it; a category that still has products cannot be removed.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Category) TableName() string {
	return "categories"
}
