package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedwhb/postenwerk/internal/catalog"
)

const defaultTax = 20.0

func mango() catalog.Product {
	rate := 10.0
	return catalog.Product{
		ID:      1,
		Name:    "Mango",
		ArtNr:   "OB-100",
		Price:   15.90,
		Unit:    "kg",
		Group:   "Obst",
		TaxRate: &rate,
	}
}

func avocado() catalog.Product {
	return catalog.Product{
		ID:    2,
		Name:  "Avocado",
		ArtNr: "OB-200",
		Price: 12.50,
	}
}

// requireInvariant checks the derived-total formula on every item.
func requireInvariant(t *testing.T, items []LineItem) {
	t.Helper()
	for _, it := range items {
		require.InDelta(t, it.Quantity*it.Price*(1-it.Discount/100), it.Total, 1e-9)
	}
}

func requireUniqueIDs(t *testing.T, items []LineItem) {
	t.Helper()
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		require.False(t, seen[it.ID], "duplicate item id %d", it.ID)
		seen[it.ID] = true
	}
}

func TestAddEmptyDefaults(t *testing.T) {
	items := AddEmpty(nil, defaultTax)

	require.Len(t, items, 1)
	it := items[0]
	assert.Equal(t, int64(1), it.ID)
	assert.Equal(t, int64(10), it.Position)
	assert.Equal(t, DefaultUnit, it.Unit)
	assert.Equal(t, 1.0, it.Quantity)
	assert.Equal(t, 0.0, it.Price)
	assert.Equal(t, 0.0, it.Discount)
	assert.Equal(t, defaultTax, it.TaxRate)
	assert.Equal(t, 0.0, it.Total)
	assert.False(t, it.Bound())
}

func TestAddEmptyAllocatesAfterExisting(t *testing.T) {
	items := []LineItem{{ID: 7, Position: 40}}

	out := AddEmpty(items, defaultTax)

	require.Len(t, out, 2)
	assert.Equal(t, int64(8), out[1].ID)
	assert.Equal(t, int64(50), out[1].Position)
	requireUniqueIDs(t, out)
}

func TestAddFromProductAppendsBoundItem(t *testing.T) {
	out := AddFromProduct(nil, mango(), defaultTax)

	require.Len(t, out, 1)
	it := out[0]
	require.True(t, it.Bound())
	assert.Equal(t, int64(1), *it.ProductID)
	assert.Equal(t, "Mango", it.Name)
	assert.Equal(t, "OB-100", it.ArtNr)
	assert.Equal(t, "kg", it.Unit)
	assert.Equal(t, 1.0, it.Quantity)
	assert.Equal(t, 15.90, it.Price)
	assert.Equal(t, 10.0, it.TaxRate)
	assert.InDelta(t, 15.90, it.Total, 1e-9)
}

func TestAddFromProductFallsBackToDefaultTaxRate(t *testing.T) {
	out := AddFromProduct(nil, avocado(), defaultTax)

	require.Len(t, out, 1)
	assert.Equal(t, defaultTax, out[0].TaxRate)
	assert.Equal(t, DefaultUnit, out[0].Unit)
}

func TestAddFromProductMergesCaseInsensitive(t *testing.T) {
	items := AddFromProduct(nil, mango(), defaultTax)
	p := mango()
	p.Name = "MANGO"

	out := AddFromProduct(items, p, defaultTax)

	require.Len(t, out, 1)
	assert.Equal(t, 2.0, out[0].Quantity)
	assert.InDelta(t, 31.80, out[0].Total, 1e-9)
	// the input collection is untouched
	assert.Equal(t, 1.0, items[0].Quantity)
}

func TestAddFromProductDoesNotMergeWithUnboundItem(t *testing.T) {
	items := AddEmpty(nil, defaultTax)
	items = Apply(items, SetName{ID: items[0].ID, Value: "Mango"})

	out := AddFromProduct(items, mango(), defaultTax)

	require.Len(t, out, 2)
	assert.False(t, out[0].Bound())
	assert.Equal(t, 1.0, out[0].Quantity)
	require.True(t, out[1].Bound())
	assert.Equal(t, 15.90, out[1].Price)
	assert.InDelta(t, 15.90, out[1].Total, 1e-9)
	requireInvariant(t, out)
}

func TestAddFromProductMergesUnderCaseFolding(t *testing.T) {
	p := mango()
	p.ID = 4
	p.Name = "Süßkartoffel"
	items := AddFromProduct(nil, p, defaultTax)

	p.Name = "SÜSSKARTOFFEL"
	out := AddFromProduct(items, p, defaultTax)

	require.Len(t, out, 1)
	assert.Equal(t, 2.0, out[0].Quantity)
}

func TestRemoveIsIdempotent(t *testing.T) {
	items := AddFromProduct(AddFromProduct(nil, mango(), defaultTax), avocado(), defaultTax)

	once := Remove(items, items[0].ID)
	twice := Remove(once, items[0].ID)

	require.Len(t, once, 1)
	assert.Equal(t, once, twice)
}

func TestRemoveMissingIDIsNoOp(t *testing.T) {
	items := AddFromProduct(nil, mango(), defaultTax)

	out := Remove(items, 999)

	assert.Equal(t, items, out)
}

func TestApplyRecomputesTotal(t *testing.T) {
	items := AddFromProduct(nil, mango(), defaultTax)
	id := items[0].ID

	out := Apply(items, SetQuantity{ID: id, Value: 3})
	require.InDelta(t, 3*15.90, out[0].Total, 1e-9)

	out = Apply(out, SetPrice{ID: id, Value: 10})
	require.InDelta(t, 30.0, out[0].Total, 1e-9)

	out = Apply(out, SetDiscount{ID: id, Value: 25})
	require.InDelta(t, 22.5, out[0].Total, 1e-9)

	requireInvariant(t, out)
}

func TestApplyTextFieldsKeepTotal(t *testing.T) {
	items := AddFromProduct(nil, mango(), defaultTax)
	id := items[0].ID

	out := Apply(items, SetName{ID: id, Value: "Flugmango"})
	out = Apply(out, SetArtNr{ID: id, Value: "OB-101"})
	out = Apply(out, SetDescription{ID: id, Value: "reif"})
	out = Apply(out, SetUnit{ID: id, Value: "Kiste"})
	out = Apply(out, SetTaxRate{ID: id, Value: 13})

	assert.Equal(t, "Flugmango", out[0].Name)
	assert.Equal(t, "OB-101", out[0].ArtNr)
	assert.Equal(t, "reif", out[0].Description)
	assert.Equal(t, "Kiste", out[0].Unit)
	assert.Equal(t, 13.0, out[0].TaxRate)
	assert.InDelta(t, items[0].Total, out[0].Total, 1e-9)
}

func TestApplyMissingIDIsNoOp(t *testing.T) {
	items := AddFromProduct(nil, mango(), defaultTax)

	out := Apply(items, SetPrice{ID: 999, Value: 5})

	assert.Equal(t, items, out)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	items := AddFromProduct(nil, mango(), defaultTax)

	_ = Apply(items, SetQuantity{ID: items[0].ID, Value: 42})

	assert.Equal(t, 1.0, items[0].Quantity)
	assert.InDelta(t, 15.90, items[0].Total, 1e-9)
}

func TestBindProductKeepsQuantityAndDiscount(t *testing.T) {
	items := AddEmpty(nil, defaultTax)
	id := items[0].ID
	items = Apply(items, SetQuantity{ID: id, Value: 4})
	items = Apply(items, SetDiscount{ID: id, Value: 50})

	out := BindProduct(items, id, mango(), defaultTax)

	it := out[0]
	require.True(t, it.Bound())
	assert.Equal(t, 4.0, it.Quantity)
	assert.Equal(t, 50.0, it.Discount)
	assert.Equal(t, 15.90, it.Price)
	assert.Equal(t, 10.0, it.TaxRate)
	assert.InDelta(t, 4*15.90*0.5, it.Total, 1e-9)
}

func TestBindProductSnapshotIsIndependentOfCatalog(t *testing.T) {
	items := AddEmpty(nil, defaultTax)
	p := mango()

	out := BindProduct(items, items[0].ID, p, defaultTax)

	// catalog price drifts after binding; the item keeps its snapshot
	p.Price = 99.99
	assert.Equal(t, 15.90, out[0].Price)
	filtered := catalog.Filter([]catalog.Product{p}, "Mango")
	require.Len(t, filtered, 1)
	assert.Equal(t, 15.90, out[0].Price)
}

func TestBindProductMissingIDIsNoOp(t *testing.T) {
	items := AddEmpty(nil, defaultTax)

	out := BindProduct(items, 999, mango(), defaultTax)

	assert.Equal(t, items, out)
}

func TestMoveSwapsRowsAndPositions(t *testing.T) {
	items := AddFromProduct(AddFromProduct(nil, mango(), defaultTax), avocado(), defaultTax)

	out := MoveDown(items, 0)

	require.Equal(t, "Avocado", out[0].Name)
	require.Equal(t, "Mango", out[1].Name)
	assert.Equal(t, int64(10), out[0].Position)
	assert.Equal(t, int64(20), out[1].Position)

	back := MoveUp(out, 1)
	assert.Equal(t, items, back)
}

func TestMoveBoundariesAreNoOps(t *testing.T) {
	items := AddFromProduct(AddFromProduct(nil, mango(), defaultTax), avocado(), defaultTax)

	assert.Equal(t, items, MoveUp(items, 0))
	assert.Equal(t, items, MoveDown(items, len(items)-1))
	assert.Equal(t, items, MoveUp(items, -1))
	assert.Equal(t, items, MoveDown(items, len(items)))
}

func TestPositionsMatchOrderAfterReorder(t *testing.T) {
	items := AddEmpty(AddFromProduct(AddFromProduct(nil, mango(), defaultTax), avocado(), defaultTax), defaultTax)

	out := MoveDown(MoveUp(items, 2), 0)

	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i].Position, out[i-1].Position)
	}
	requireUniqueIDs(t, out)
}

func TestDiscountBoundaries(t *testing.T) {
	items := AddFromProduct(nil, mango(), defaultTax)
	id := items[0].ID
	items = Apply(items, SetQuantity{ID: id, Value: 3})

	full := Apply(items, SetDiscount{ID: id, Value: 100})
	assert.InDelta(t, 0.0, full[0].Total, 1e-9)

	none := Apply(items, SetDiscount{ID: id, Value: 0})
	assert.InDelta(t, 3*15.90, none[0].Total, 1e-9)
}

func TestRenumberCompactsPositions(t *testing.T) {
	items := []LineItem{
		{ID: 1, Position: 10},
		{ID: 2, Position: 45},
		{ID: 3, Position: 170},
	}

	out := Renumber(items)

	assert.Equal(t, int64(10), out[0].Position)
	assert.Equal(t, int64(20), out[1].Position)
	assert.Equal(t, int64(30), out[2].Position)
	// input untouched
	assert.Equal(t, int64(170), items[2].Position)
}

func TestInvariantHoldsAcrossOperationMix(t *testing.T) {
	items := AddEmpty(nil, defaultTax)
	items = AddFromProduct(items, mango(), defaultTax)
	items = AddFromProduct(items, avocado(), defaultTax)
	items = Apply(items, SetQuantity{ID: items[1].ID, Value: 2.5})
	items = Apply(items, SetDiscount{ID: items[2].ID, Value: 15})
	items = BindProduct(items, items[0].ID, avocado(), defaultTax)
	items = MoveDown(items, 0)
	items = Remove(items, items[1].ID)

	requireInvariant(t, items)
	requireUniqueIDs(t, items)
}
