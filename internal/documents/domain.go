// Package documents implements the document editors hosting the line-item
// engine: offers, invoices and delivery notes. A document owns its ordered
// item collection; every mutation goes through the pure ledger functions
// and the result replaces the stored collection.
package documents

import (
	"errors"
	"time"

	"github.com/mohamedwhb/postenwerk/internal/ledger"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrFinalized = errors.New("document is finalized")
)

type DocumentKind string

const (
	KindOffer        DocumentKind = "offer"
	KindInvoice      DocumentKind = "invoice"
	KindDeliveryNote DocumentKind = "delivery_note"
)

// Valid reports whether the kind is one of the known document kinds.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindOffer, KindInvoice, KindDeliveryNote:
		return true
	}
	return false
}

type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "DRAFT"
	StatusFinalized DocumentStatus = "FINALIZED"
)

// Valid reports whether s is a known status.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusFinalized:
		return true
	}
	return false
}

// Document is the current state of a commercial document. The monetary
// aggregates are derived from Items on every mutation and stored
// alongside for listing queries.
type Document struct {
	ID             int64             `json:"id" db:"id"`
	DocNumber      string            `json:"doc_number" db:"doc_number"`
	Kind           DocumentKind      `json:"kind" db:"kind"`
	Status         DocumentStatus    `json:"status" db:"status"`
	CustomerName   string            `json:"customer_name" db:"customer_name"`
	Notes          *string           `json:"notes,omitempty" db:"notes"`
	DefaultTaxRate float64           `json:"default_tax_rate" db:"default_tax_rate"`
	Subtotal       float64           `json:"subtotal" db:"subtotal"`
	TaxTotal       float64           `json:"tax_total" db:"tax_total"`
	Total          float64           `json:"total" db:"total"`
	Items          []ledger.LineItem `json:"items" db:"-"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// CreateDocumentRequest opens a new draft document.
type CreateDocumentRequest struct {
	Kind         DocumentKind `json:"kind" validate:"required"`
	CustomerName string       `json:"customer_name" validate:"required,max=200"`
	Notes        *string      `json:"notes,omitempty"`
	// DefaultTaxRate overrides the application default for this document.
	DefaultTaxRate *float64 `json:"default_tax_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// UpdateDocumentRequest changes header fields of a draft.
type UpdateDocumentRequest struct {
	CustomerName   *string  `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	Notes          *string  `json:"notes,omitempty"`
	DefaultTaxRate *float64 `json:"default_tax_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// ListDocumentsRequest filters the paginated document listing.
type ListDocumentsRequest struct {
	Kind   *DocumentKind   `json:"kind,omitempty"`
	Status *DocumentStatus `json:"status,omitempty"`
	Search string          `json:"search"`
	Limit  int             `json:"limit" validate:"gte=0,lte=1000"`
	Offset int             `json:"offset" validate:"gte=0"`
}

// MoveDirection selects the neighbour an item is swapped with.
type MoveDirection string

const (
	MoveDirectionUp   MoveDirection = "up"
	MoveDirectionDown MoveDirection = "down"
)
