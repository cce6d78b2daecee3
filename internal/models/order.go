package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is a confirmed order archived after the customer replied SI.
type Order struct {
	gorm.Model
	Reference    string      `json:"reference" gorm:"uniqueIndex;not null"`
	CustomerID   string      `json:"customer_id" gorm:"index;not null"` // WhatsApp number that placed the order
	ContactName  string      `json:"contact_name"`
	ContactPhone string      `json:"contact_phone" gorm:"index"`
	DeliveryDate string      `json:"delivery_date"` // 2006-01-02
	Total        int64       `json:"total"`
	Items        []OrderItem `json:"items" gorm:"constraint:OnDelete:CASCADE"`
	SubmittedAt  time.Time   `json:"submitted_at"`
}

// OrderItem is one product line of an archived order.
type OrderItem struct {
	gorm.Model
	OrderID     uint   `json:"order_id" gorm:"index"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Subtotal    int64  `json:"subtotal"`
}

// OrderSubmission is the finalized order handed to the order sinks.
// Retries of the same order carry the same Reference.
type OrderSubmission struct {
	Reference         string
	CustomerID        string
	ContactName       string
	ContactPhone      string
	LineItemsSummary  string
	QuantitiesSummary string
	Total             int64
	DeliveryDate      string
	DeliveryLabel     string
	Items             []OrderItem
}

// ToOrder converts the submission into an archive record.
func (s OrderSubmission) ToOrder(submittedAt time.Time) *Order {
	items := make([]OrderItem, len(s.Items))
	copy(items, s.Items)
	return &Order{
		Reference:    s.Reference,
		CustomerID:   s.CustomerID,
		ContactName:  s.ContactName,
		ContactPhone: s.ContactPhone,
		DeliveryDate: s.DeliveryDate,
		Total:        s.Total,
		Items:        items,
		SubmittedAt:  submittedAt,
	}
}
