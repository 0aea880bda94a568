package models

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus is the canonical (lower-case) order state.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ParseOrderStatus folds case so legacy mixed-case values ("Pending") map to
// the canonical states. Unknown values are rejected.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusProcessing:
		return OrderStatusProcessing, nil
	case OrderStatusShipped:
		return OrderStatusShipped, nil
	case OrderStatusDelivered:
		return OrderStatusDelivered, nil
	case OrderStatusCancelled:
		return OrderStatusCancelled, nil
	}
	return "", fmt.Errorf("invalid order status: %s", s)
}

// CanTransitionTo reports whether the order lifecycle allows moving from s
// to next. Delivered and cancelled are terminal; cancellation is only
// reachable from pending or processing.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing || next == OrderStatusCancelled
	case OrderStatusProcessing:
		return next == OrderStatusShipped || next == OrderStatusCancelled
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	}
	return false
}

// Cancellable reports whether an order in state s may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}

// PaymentStatus of an order.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// OrderItem is a snapshot of a purchased product captured at order time.
// It is a copy, not a reference; later product edits never change it.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"` // Price at the time of order
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// ShippingDetails is the delivery address snapshot stored on the order.
type ShippingDetails struct {
	Address    string `json:"address" validate:"omitempty,max=255"`
	City       string `json:"city" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"omitempty,max=20"`
	Country    string `json:"country" validate:"omitempty,max=100"`
}

// Order represents a customer order. Items and shipping details are
// snapshots owned by the order; Total is always computed server-side.
type Order struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string          `json:"user_id" gorm:"index;type:varchar(36)"`
	Email         string          `json:"email"`
	Items         []OrderItem     `json:"items" gorm:"serializer:json"`
	Total         int64           `json:"total"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(20)"`
	Shipping      ShippingDetails `json:"shipping" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod PaymentMethod   `json:"payment_method" gorm:"type:varchar(20)"`
	PaymentStatus PaymentStatus   `json:"payment_status" gorm:"type:varchar(10)"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
