package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// fold normalizes a string for case-insensitive matching. Unicode case
// folding keeps German catalog names (ß, umlauts) comparable.
func fold(s string) string {
	return cases.Fold().String(s)
}

// EqualFold reports whether two strings are equal under Unicode case
// folding, the same comparison Filter and Resolve use.
func EqualFold(a, b string) bool {
	return fold(a) == fold(b)
}

// Filter returns the products matching a free-text query. The match is a
// case-insensitive substring test against name, article number, group and
// description; any field matching includes the product. A blank query
// returns the catalog unchanged, and the catalog order is preserved.
func Filter(products []Product, query string) []Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return products
	}
	needle := fold(query)

	var out []Product
	for _, p := range products {
		if strings.Contains(fold(p.Name), needle) ||
			strings.Contains(fold(p.ArtNr), needle) ||
			strings.Contains(fold(p.Group), needle) ||
			strings.Contains(fold(p.Description), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Resolve finds the single product exactly matching a token, checking the
// name first and the article number second, case-insensitively. It returns
// nil when nothing matches. Unlike Filter this is deliberately strict:
// batch entry must not bind to an ambiguous partial match.
func Resolve(products []Product, token string) *Product {
	token = fold(strings.TrimSpace(token))
	if token == "" {
		return nil
	}
	for i := range products {
		if fold(products[i].Name) == token {
			p := products[i]
			return &p
		}
	}
	for i := range products {
		if products[i].ArtNr != "" && fold(products[i].ArtNr) == token {
			p := products[i]
			return &p
		}
	}
	return nil
}
