// Package ledger implements the line-item engine shared by all document
// editors (offers, invoices, delivery notes). Every operation is a pure
// function over an ordered item slice: the caller passes the current items
// in and replaces them with the returned slice. The package holds no state.
package ledger

// DefaultUnit is used for items that are not bound to a catalog product.
const DefaultUnit = "Stück"

// positionStep is the gap between consecutive position values so that rows
// can be re-ordered by swapping positions without renumbering the rest.
const positionStep = 10

// LineItem is one row of a commercial document. Total is derived from
// Quantity, Price and Discount and is recomputed by every mutating
// operation; it must never be set directly.
type LineItem struct {
	ID          int64   `json:"id" db:"id"`
	Position    int64   `json:"position" db:"position"`
	ProductID   *int64  `json:"product_id,omitempty" db:"product_id"`
	Name        string  `json:"name" db:"name"`
	ArtNr       string  `json:"art_nr" db:"art_nr"`
	Description string  `json:"description" db:"description"`
	Unit        string  `json:"unit" db:"unit"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	Price       float64 `json:"price" db:"price"`
	Discount    float64 `json:"discount" db:"discount"`
	TaxRate     float64 `json:"tax_rate" db:"tax_rate"`
	Total       float64 `json:"total" db:"total"`
}

// lineTotal applies the discount percentage to the extended price.
// No currency rounding here; formatting to 2 decimals is presentation-only.
func lineTotal(quantity, price, discount float64) float64 {
	return quantity * price * (1 - discount/100)
}

// recompute refreshes the derived Total from the item's own fields.
func (li *LineItem) recompute() {
	li.Total = lineTotal(li.Quantity, li.Price, li.Discount)
}

// Bound reports whether the item carries a catalog product snapshot.
func (li LineItem) Bound() bool {
	return li.ProductID != nil
}

// nextID returns max existing id + 1.
func nextID(items []LineItem) int64 {
	var max int64
	for _, it := range items {
		if it.ID > max {
			max = it.ID
		}
	}
	return max + 1
}

// nextPosition returns max existing position + positionStep.
func nextPosition(items []LineItem) int64 {
	var max int64
	for _, it := range items {
		if it.Position > max {
			max = it.Position
		}
	}
	return max + positionStep
}

// clone returns a copy of items so that no operation mutates its input.
func clone(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
