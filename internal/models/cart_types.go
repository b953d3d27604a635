package models

import "time"

// CartItem defines the struct for the 'cart_items' table.
// Rows are keyed (user_id, product_id); quantity is always >= 1, a row
// whose quantity would drop to 0 is deleted instead.
type CartItem struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
