package models

import (
	"fmt"
	"time"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// ParseOrderStatus validates an admin-supplied status string. Any known
// status may overwrite any other (there is no transition table), but
// unrecognized values are rejected at the boundary.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// PaymentStatus is the state of a payment. Transitions only move
// PENDING -> COMPLETED or PENDING -> FAILED.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// ParseExternalPaymentStatus maps the status string reported by the payment
// widget onto our closed enum. The mapping happens exactly once, here, at
// the system boundary; unknown values are an error, never a silent default.
func ParseExternalPaymentStatus(s string) (PaymentStatus, error) {
	switch s {
	case "SUCCESS":
		return PaymentCompleted, nil
	case "FAILED":
		return PaymentFailed, nil
	case "PENDING":
		return PaymentPending, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// Order is the model for the 'orders' table. The primary key is the
// client-generated external transaction id, which makes order creation
// naturally idempotent under retry: re-submitting the same id collides
// instead of duplicating.
type Order struct {
	ID            string        `json:"id" db:"id"`
	UserID        int64         `json:"userId" db:"user_id"`
	TotalAmount   float64       `json:"totalAmount" db:"total_amount"`
	Currency      string        `json:"currency" db:"currency"`
	Status        OrderStatus   `json:"status" db:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus" db:"payment_status"`
	PaymentMethod *string       `json:"paymentMethod,omitempty" db:"payment_method"`
	AddressID     *int64        `json:"addressId,omitempty" db:"address_id"`

	// Shipping snapshot, frozen at creation time.
	ShippingFullName *string `json:"shippingFullName,omitempty" db:"shipping_full_name"`
	ShippingPhone    *string `json:"shippingPhone,omitempty" db:"shipping_phone"`
	ShippingArea     *string `json:"shippingArea,omitempty" db:"shipping_area"`
	ShippingCity     *string `json:"shippingCity,omitempty" db:"shipping_city"`
	ShippingState    *string `json:"shippingState,omitempty" db:"shipping_state"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderItem is the model for the 'order_items' table.
type OrderItem struct {
	ID           int64     `json:"id" db:"id"`
	OrderID      string    `json:"orderId" db:"order_id"`
	ProductID    int64     `json:"productId" db:"product_id"`
	Quantity     int       `json:"quantity" db:"quantity"`
	PriceAtOrder float64   `json:"priceAtOrder" db:"price_at_order"` // snapshot, immune to later price changes
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Payment is the model for the 'payments' table (one-to-one with orders).
type Payment struct {
	ID            int64         `json:"id" db:"id"`
	OrderID       string        `json:"orderId" db:"order_id"`
	Amount        float64       `json:"amount" db:"amount"`
	Currency      string        `json:"currency" db:"currency"`
	Method        *string       `json:"method,omitempty" db:"method"`
	TransactionID string        `json:"transactionId" db:"transaction_id"`
	Status        PaymentStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}
