package model

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Products   []Product `json:"products"`
	// TotalAmount is the sum of the referenced products' prices at order
	// creation time. It is never recomputed when a product is repriced.
	TotalAmount float64   `json:"total_amount"`
	OrderDate   time.Time `json:"order_date"`
}
