package models

import (
	"database/sql/driver"
	"time"
)

// OrderStatus is the kitchen lifecycle of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderPreparing, OrderCancelled},
	OrderPreparing: {OrderReady, OrderCancelled},
	OrderReady:     {OrderCompleted},
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ReceiptStatus tracks the asynchronous PDF receipt.
type ReceiptStatus string

const (
	ReceiptQueued ReceiptStatus = "queued"
	ReceiptReady  ReceiptStatus = "ready"
	ReceiptFailed ReceiptStatus = "failed"
)

// OrderLine is a priced cart entry captured at checkout.
type OrderLine struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
	LineTotal  float64 `json:"lineTotal"`
}

// OrderLines is stored as a JSONB array.
type OrderLines []OrderLine

// Scan implements sql.Scanner.
func (l *OrderLines) Scan(src interface{}) error { return scanJSON(src, l) }

// Value implements driver.Valuer.
func (l OrderLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return jsonValue(l)
}

// Order is a checked-out cafeteria cart.
type Order struct {
	ID            string        `db:"id" json:"id"`
	UserID        string        `db:"user_id" json:"userId"`
	Items         OrderLines    `db:"items" json:"items"`
	Subtotal      float64       `db:"subtotal" json:"subtotal"`
	Tax           float64       `db:"tax" json:"tax"`
	Total         float64       `db:"total" json:"total"`
	Status        OrderStatus   `db:"status" json:"status"`
	Notes         string        `db:"notes" json:"notes"`
	ReceiptStatus ReceiptStatus `db:"receipt_status" json:"receiptStatus"`
	ReceiptPath   *string       `db:"receipt_path" json:"-"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	ListOptions
	UserID string
	Status OrderStatus
}
