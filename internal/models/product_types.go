package models

import "time"

// Product is the model for the 'products' table.
// Images are stored as a JSON array column and unpacked when scanning.
type Product struct {
	ID          int64    `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Description string   `json:"description" db:"description"`
	CategoryID  int64    `json:"categoryId" db:"category_id"`
	Price       float64  `json:"price" db:"price"`
	OfferPrice  float64  `json:"offerPrice" db:"offer_price"`
	Stock       int      `json:"stock" db:"stock"`
	Images      []string `json:"images" db:"-"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Flattened join field, populated on reads that include the category.
	CategoryName string `json:"categoryName,omitempty" db:"-"`
}

// EffectivePrice is the price a buyer actually pays: the offer price when
// one is set, the list price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.OfferPrice > 0 {
		return p.OfferPrice
	}
	return p.Price
}
