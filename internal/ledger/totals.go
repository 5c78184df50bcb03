package ledger

import (
	"math"
	"sort"
)

// TaxLine is the document-level tax aggregate for one rate.
type TaxLine struct {
	Rate   float64 `json:"rate"`
	Base   float64 `json:"base"`
	Amount float64 `json:"amount"`
}

// DocumentTotals aggregates a document's items. Line totals are pre-tax;
// tax is computed here by grouping lines per rate.
type DocumentTotals struct {
	Subtotal   float64   `json:"subtotal"`
	TaxLines   []TaxLine `json:"tax_lines"`
	TaxTotal   float64   `json:"tax_total"`
	GrandTotal float64   `json:"grand_total"`
}

// Totals computes the document aggregate over all items. The result keeps
// unrounded values; Round2 is for rendering only.
func Totals(items []LineItem) DocumentTotals {
	var t DocumentTotals
	base := make(map[float64]float64)
	for _, it := range items {
		t.Subtotal += it.Total
		base[it.TaxRate] += it.Total
	}

	rates := make([]float64, 0, len(base))
	for rate := range base {
		rates = append(rates, rate)
	}
	sort.Float64s(rates)

	for _, rate := range rates {
		amount := base[rate] * rate / 100
		t.TaxLines = append(t.TaxLines, TaxLine{Rate: rate, Base: base[rate], Amount: amount})
		t.TaxTotal += amount
	}
	t.GrandTotal = t.Subtotal + t.TaxTotal
	return t
}

// Round2 rounds to 2 decimal places for display. Stored quantities and
// totals stay unrounded.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
