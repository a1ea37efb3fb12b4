package domain

import (
	"time"
)

// Product represents a product in the catalog. Prices are whole minor
// currency units.
type Product struct {
	ID            int64     `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Price         int64     `json:"price" db:"price"`
	DiscountPrice *int64    `json:"discount_price" db:"discount_price"`
	Description   *string   `json:"description" db:"description"`
	Image         *string   `json:"image" db:"image"`
	CategoryID    *int64    `json:"categoryId" db:"category_id"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// Category represents a product category. A category owns zero or more
// products through Product.CategoryID.
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Image     *string   `json:"image" db:"image"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
