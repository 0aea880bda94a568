package models

import "fmt"

// CartLine is a single line in a user's cart. Two lines are the same line
// when (ProductID, Size, Color) match; adding such a combination again
// increments the quantity instead of duplicating the line.
type CartLine struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UserID    string `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	Size      string `json:"size,omitempty" validate:"omitempty,max=20"`
	Color     string `json:"color,omitempty" validate:"omitempty,max=30"`
}

// MergeKey is the identity of a cart line for merge purposes.
func (l CartLine) MergeKey() string {
	return fmt.Sprintf("%s|%s|%s", l.ProductID, l.Size, l.Color)
}
