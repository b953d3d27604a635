package models

import "time"

// Address is the model for the 'addresses' table.
// At most one address per user carries IsDefault=true; the write path
// clears the flag on the user's other rows inside the same transaction.
type Address struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	FullName  string    `json:"fullName" db:"full_name"`
	Phone     string    `json:"phone" db:"phone"`
	Area      string    `json:"area" db:"area"`
	City      string    `json:"city" db:"city"`
	State     string    `json:"state" db:"state"`
	Country   string    `json:"country" db:"country"`
	Pincode   *string   `json:"pincode,omitempty" db:"pincode"`
	IsDefault bool      `json:"isDefault" db:"is_default"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
