// Package catalog manages the product catalog and the matching logic used
// by document editors when binding free text to products.
package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrAlreadyExists = errors.New("product already exists")
)

// Product is a catalog entry. Documents never reference it live: binding a
// product to a line item copies the fields as a snapshot, so later catalog
// edits leave existing documents untouched.
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	ArtNr       string    `json:"art_nr" db:"art_nr"`
	Price       float64   `json:"price" db:"price"`
	Unit        string    `json:"unit" db:"unit"`
	Group       string    `json:"group" db:"product_group"`
	Stock       *float64  `json:"stock,omitempty" db:"stock"`
	Description string    `json:"description" db:"description"`
	TaxRate     *float64  `json:"tax_rate,omitempty" db:"tax_rate"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// EffectiveTaxRate returns the product tax rate or the supplied default
// when the product does not carry one.
func (p Product) EffectiveTaxRate(defaultRate float64) float64 {
	if p.TaxRate != nil {
		return *p.TaxRate
	}
	return defaultRate
}

// ProductForm carries create/update input for a product.
type ProductForm struct {
	Name        string   `json:"name" validate:"required,max=200"`
	ArtNr       string   `json:"art_nr" validate:"max=50"`
	Price       float64  `json:"price" validate:"gte=0"`
	Unit        string   `json:"unit" validate:"max=20"`
	Group       string   `json:"group" validate:"max=100"`
	Stock       *float64 `json:"stock,omitempty"`
	Description string   `json:"description"`
	TaxRate     *float64 `json:"tax_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// ListProductsRequest filters the paginated product listing.
type ListProductsRequest struct {
	Search   string `json:"search"`
	Group    string `json:"group"`
	IsActive *bool  `json:"is_active,omitempty"`
	Limit    int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int    `json:"offset" validate:"gte=0"`
}
