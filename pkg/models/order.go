package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Every order starts as pending; completed and cancelled
// are terminal by convention.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusEnRoute   = "en_route"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusEnRoute, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// LineItem is one product entry within an order. Name and unit price are
// snapshotted from the catalog when the order is created and are never
// refreshed afterwards, so historical orders stay valid when products
// change or disappear.
type LineItem struct {
	ProductID   primitive.ObjectID `bson:"productId" json:"productId"`
	ProductName string             `bson:"productName" json:"productName"`
	UnitPrice   float64            `bson:"unitPrice" json:"unitPrice"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	LineTotal   float64            `bson:"lineTotal" json:"lineTotal"`
}

type ShippingInfo struct {
	Address      string `bson:"address" json:"address"`
	Reference    string `bson:"reference" json:"reference"`
	Observations string `bson:"observations" json:"observations"`
}

// HistoryEntry is one record of the order's append-only audit trail.
type HistoryEntry struct {
	Status string    `bson:"status" json:"status"`
	Date   time.Time `bson:"date" json:"date"`
	Note   string    `bson:"note,omitempty" json:"note,omitempty"`
}

type Order struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID            primitive.ObjectID `bson:"customerId" json:"customerId"`
	LineItems             []LineItem         `bson:"lineItems" json:"lineItems"`
	Total                 float64            `bson:"total" json:"total"`
	Status                string             `bson:"status" json:"status"`
	ShippingInfo          ShippingInfo       `bson:"shippingInfo" json:"shippingInfo"`
	ReferenceNumber       string             `bson:"referenceNumber" json:"referenceNumber"`
	EstimatedDeliveryDate *time.Time         `bson:"estimatedDeliveryDate,omitempty" json:"estimatedDeliveryDate,omitempty"`
	ShippingDate          *time.Time         `bson:"shippingDate,omitempty" json:"shippingDate,omitempty"`
	History               []HistoryEntry     `bson:"history" json:"history"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
}
