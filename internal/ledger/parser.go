package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mohamedwhb/postenwerk/internal/catalog"
)

// quantityPattern matches the optional "<quantity> x " prefix of a batch
// line. The decimal separator may be a comma or a dot.
var quantityPattern = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*[xX]\s*(.*)$`)

// bareSeparator catches lines that start with the separator but carry no
// quantity, e.g. "x Mango". Treating those as a product name would hide a
// typo in the quantity, so they are rejected instead.
var bareSeparator = regexp.MustCompile(`^[xX](\s|$)`)

// ParseError aggregates all invalid lines of one batch. Batch entry is
// all-or-nothing: one bad line rejects the whole input.
type ParseError struct {
	Lines []string
}

func (e *ParseError) Error() string {
	return "batch parse failed: " + strings.Join(e.Lines, "; ")
}

// ParseBatch converts multi-line free text into line items appended to the
// existing collection. Each non-blank line is either "<quantity> x <name>"
// or a bare product name with quantity 1. Names are resolved against the
// catalog via Resolve; lines without an exact match become zero-priced ad
// hoc items. Ids and positions of the new items are allocated
// deterministically against both the existing items and the earlier lines
// of the same batch.
func ParseBatch(text string, products []catalog.Product, items []LineItem, defaultTaxRate float64) ([]LineItem, error) {
	out := clone(items)
	id := nextID(items)
	position := nextPosition(items)

	var parseErr ParseError
	for no, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		quantity := 1.0
		name := line
		if bareSeparator.MatchString(line) {
			parseErr.Lines = append(parseErr.Lines, fmt.Sprintf("line %d: missing quantity before separator", no+1))
			continue
		}
		if m := quantityPattern.FindStringSubmatch(line); m != nil {
			q, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
			if err != nil {
				parseErr.Lines = append(parseErr.Lines, fmt.Sprintf("line %d: invalid quantity %q", no+1, m[1]))
				continue
			}
			quantity = q
			name = strings.TrimSpace(m[2])
			if name == "" {
				parseErr.Lines = append(parseErr.Lines, fmt.Sprintf("line %d: product name is empty", no+1))
				continue
			}
		}

		if p := catalog.Resolve(products, name); p != nil {
			out = append(out, newBoundItem(id, position, *p, quantity, defaultTaxRate))
		} else {
			out = append(out, LineItem{
				ID:       id,
				Position: position,
				Name:     name,
				Unit:     DefaultUnit,
				Quantity: quantity,
				TaxRate:  defaultTaxRate,
			})
		}
		id++
		position += positionStep
	}

	if len(parseErr.Lines) > 0 {
		return nil, &parseErr
	}
	return out, nil
}
