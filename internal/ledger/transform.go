package ledger

import (
	"github.com/mohamedwhb/postenwerk/internal/catalog"
)

// AddEmpty appends a blank line item with quantity 1 and the default unit.
// The caller supplies the document's default tax rate.
func AddEmpty(items []LineItem, defaultTaxRate float64) []LineItem {
	out := clone(items)
	out = append(out, LineItem{
		ID:       nextID(items),
		Position: nextPosition(items),
		Unit:     DefaultUnit,
		Quantity: 1,
		TaxRate:  defaultTaxRate,
	})
	return out
}

// AddFromProduct appends a line item bound to a catalog product. When a
// bound item with the same name is already present (case-insensitive) its
// quantity is incremented instead of adding a duplicate row. Unbound ad
// hoc items never merge, even under the same name.
func AddFromProduct(items []LineItem, product catalog.Product, defaultTaxRate float64) []LineItem {
	out := clone(items)
	for i := range out {
		if out[i].Bound() && catalog.EqualFold(out[i].Name, product.Name) {
			out[i].Quantity++
			out[i].recompute()
			return out
		}
	}
	out = append(out, newBoundItem(nextID(items), nextPosition(items), product, 1, defaultTaxRate))
	return out
}

// Remove filters out the item with the given id. Removing an id that is
// not present returns the collection unchanged; removal is idempotent.
func Remove(items []LineItem, id int64) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// Apply executes a single-field command. Commands addressing an unknown id
// are no-ops; the returned slice then carries the same content as the
// input. Numeric commands recompute the derived Total with the post-update
// field values.
func Apply(items []LineItem, cmd Command) []LineItem {
	out := clone(items)
	for i := range out {
		if out[i].ID != cmd.TargetID() {
			continue
		}
		if cmd.apply(&out[i]) {
			out[i].recompute()
		}
		break
	}
	return out
}

// BindProduct overwrites the item's product snapshot fields from the
// catalog product and recomputes the total against the new price while
// keeping the item's quantity and discount. The snapshot is a copy: later
// catalog changes do not leak into the item until it is bound again.
func BindProduct(items []LineItem, id int64, product catalog.Product, defaultTaxRate float64) []LineItem {
	out := clone(items)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		pid := product.ID
		out[i].ProductID = &pid
		out[i].Name = product.Name
		out[i].ArtNr = product.ArtNr
		out[i].Price = product.Price
		out[i].Unit = productUnit(product)
		out[i].Description = product.Description
		out[i].TaxRate = product.EffectiveTaxRate(defaultTaxRate)
		out[i].recompute()
		break
	}
	return out
}

// MoveUp swaps the item at index with its predecessor. Index 0 and indexes
// outside the slice are no-ops.
func MoveUp(items []LineItem, index int) []LineItem {
	if index <= 0 || index >= len(items) {
		return clone(items)
	}
	return swap(items, index-1, index)
}

// MoveDown swaps the item at index with its successor. The last index and
// indexes outside the slice are no-ops.
func MoveDown(items []LineItem, index int) []LineItem {
	if index < 0 || index >= len(items)-1 {
		return clone(items)
	}
	return swap(items, index, index+1)
}

// swap exchanges two adjacent rows and their position values, so position
// order keeps matching slice order without renumbering other rows.
func swap(items []LineItem, a, b int) []LineItem {
	out := clone(items)
	out[a], out[b] = out[b], out[a]
	out[a].Position, out[b].Position = out[b].Position, out[a].Position
	return out
}

// Renumber compacts positions back to the 10, 20, 30 … sequence. Hosts call
// this after batch inserts when they want gap-free positions.
func Renumber(items []LineItem) []LineItem {
	out := clone(items)
	for i := range out {
		out[i].Position = int64(i+1) * positionStep
	}
	return out
}

// newBoundItem builds a line item carrying a product snapshot.
func newBoundItem(id, position int64, product catalog.Product, quantity, defaultTaxRate float64) LineItem {
	pid := product.ID
	li := LineItem{
		ID:          id,
		Position:    position,
		ProductID:   &pid,
		Name:        product.Name,
		ArtNr:       product.ArtNr,
		Description: product.Description,
		Unit:        productUnit(product),
		Quantity:    quantity,
		Price:       product.Price,
		TaxRate:     product.EffectiveTaxRate(defaultTaxRate),
	}
	li.recompute()
	return li
}

func productUnit(p catalog.Product) string {
	if p.Unit == "" {
		return DefaultUnit
	}
	return p.Unit
}
