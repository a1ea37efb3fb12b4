package domain

import "github.com/google/uuid"

// Sale is a customer's request to buy a product, optionally at a discount.
// Identifiers are kept as the client sent them; nothing is persisted.
type Sale struct {
	ProductID interface{} `json:"productId"`
	UserID    interface{} `json:"userId"`
	Discount  interface{} `json:"discount"`
}

// Order is an opaque order payload. Only its field names are inspected.
type Order map[string]interface{}

// Receipt acknowledges an accepted submission.
type Receipt struct {
	Reference uuid.UUID
	Kind      string
}
