package ledger

// Command is a single-field mutation addressed to one line item. Using one
// type per field keeps the set of mutations closed: whether a field change
// triggers a Total recomputation is decided by the variant, not by a
// string comparison at runtime.
type Command interface {
	// TargetID names the item the command applies to.
	TargetID() int64
	// apply mutates the copied item and reports whether Total must be
	// recomputed afterwards.
	apply(li *LineItem) bool
}

type SetQuantity struct {
	ID    int64
	Value float64
}

func (c SetQuantity) TargetID() int64 { return c.ID }

func (c SetQuantity) apply(li *LineItem) bool {
	li.Quantity = c.Value
	return true
}

type SetPrice struct {
	ID    int64
	Value float64
}

func (c SetPrice) TargetID() int64 { return c.ID }

func (c SetPrice) apply(li *LineItem) bool {
	li.Price = c.Value
	return true
}

type SetDiscount struct {
	ID    int64
	Value float64
}

func (c SetDiscount) TargetID() int64 { return c.ID }

func (c SetDiscount) apply(li *LineItem) bool {
	li.Discount = c.Value
	return true
}

// SetTaxRate changes the per-line tax rate. Line totals are pre-tax, so no
// recomputation happens; tax is aggregated at document level (see Totals).
type SetTaxRate struct {
	ID    int64
	Value float64
}

func (c SetTaxRate) TargetID() int64 { return c.ID }

func (c SetTaxRate) apply(li *LineItem) bool {
	li.TaxRate = c.Value
	return false
}

type SetName struct {
	ID    int64
	Value string
}

func (c SetName) TargetID() int64 { return c.ID }

func (c SetName) apply(li *LineItem) bool {
	li.Name = c.Value
	return false
}

type SetArtNr struct {
	ID    int64
	Value string
}

func (c SetArtNr) TargetID() int64 { return c.ID }

func (c SetArtNr) apply(li *LineItem) bool {
	li.ArtNr = c.Value
	return false
}

type SetDescription struct {
	ID    int64
	Value string
}

func (c SetDescription) TargetID() int64 { return c.ID }

func (c SetDescription) apply(li *LineItem) bool {
	li.Description = c.Value
	return false
}

type SetUnit struct {
	ID    int64
	Value string
}

func (c SetUnit) TargetID() int64 { return c.ID }

func (c SetUnit) apply(li *LineItem) bool {
	li.Unit = c.Value
	return false
}
