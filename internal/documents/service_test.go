package documents

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mohamedwhb/postenwerk/internal/catalog"
	"github.com/mohamedwhb/postenwerk/internal/ledger"
)

type mockRepository struct {
	nextID int64
	docs   map[int64]*Document
}

func newMockRepository() *mockRepository {
	return &mockRepository{nextID: 1, docs: map[int64]*Document{}}
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *doc
	cp.Items = append([]ledger.LineItem(nil), doc.Items...)
	return &cp, nil
}

func (m *mockRepository) List(_ context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	var out []Document
	for _, doc := range m.docs {
		if req.Kind != nil && doc.Kind != *req.Kind {
			continue
		}
		if req.Status != nil && doc.Status != *req.Status {
			continue
		}
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (m *mockRepository) Create(_ context.Context, doc Document) (int64, error) {
	doc.ID = m.nextID
	m.nextID++
	m.docs[doc.ID] = &doc
	return doc.ID, nil
}

func (m *mockRepository) UpdateHeader(_ context.Context, id int64, req UpdateDocumentRequest) error {
	doc, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	if req.CustomerName != nil {
		doc.CustomerName = *req.CustomerName
	}
	if req.Notes != nil {
		doc.Notes = req.Notes
	}
	if req.DefaultTaxRate != nil {
		doc.DefaultTaxRate = *req.DefaultTaxRate
	}
	return nil
}

func (m *mockRepository) UpdateStatus(_ context.Context, id int64, status DocumentStatus) error {
	doc, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc.Status = status
	return nil
}

func (m *mockRepository) ReplaceItems(_ context.Context, id int64, items []ledger.LineItem, totals ledger.DocumentTotals) error {
	doc, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc.Items = append([]ledger.LineItem(nil), items...)
	doc.Subtotal = totals.Subtotal
	doc.TaxTotal = totals.TaxTotal
	doc.Total = totals.GrandTotal
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *mockRepository) GenerateDocNumber(_ context.Context, kind DocumentKind, date time.Time) (string, error) {
	return string(kind) + "-TEST", nil
}

type mockCatalog struct {
	products []catalog.Product
}

func (m *mockCatalog) Snapshot(_ context.Context) ([]catalog.Product, error) {
	return m.products, nil
}

func (m *mockCatalog) Get(_ context.Context, id int64) (catalog.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func testProducts() []catalog.Product {
	ten := 10.0
	return []catalog.Product{
		{ID: 1, Name: "Mango", ArtNr: "OB-100", Price: 15.90, Unit: "kg", TaxRate: &ten},
		{ID: 2, Name: "Avocado", ArtNr: "OB-200", Price: 12.50},
	}
}

func newTestService(t *testing.T) (*Service, *mockRepository) {
	t.Helper()
	repo := newMockRepository()
	return NewService(repo, &mockCatalog{products: testProducts()}, 20), repo
}

func createDraft(t *testing.T, svc *Service) *Document {
	t.Helper()
	doc, err := svc.Create(context.Background(), CreateDocumentRequest{
		Kind:         KindOffer,
		CustomerName: "Gemüsehandel Huber",
	})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, doc.Status)
	return doc
}

func TestCreateAppliesDefaultTaxRate(t *testing.T) {
	svc, _ := newTestService(t)
	doc := createDraft(t, svc)
	require.Equal(t, 20.0, doc.DefaultTaxRate)
	require.Equal(t, "offer-TEST", doc.DocNumber)

	override := 13.0
	doc2, err := svc.Create(context.Background(), CreateDocumentRequest{
		Kind:           KindInvoice,
		CustomerName:   "Biohof Lang",
		DefaultTaxRate: &override,
	})
	require.NoError(t, err)
	require.Equal(t, 13.0, doc2.DefaultTaxRate)
}

func TestAddItemAndProductItem(t *testing.T) {
	svc, _ := newTestService(t)
	doc := createDraft(t, svc)
	ctx := context.Background()

	doc, err := svc.AddItem(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	require.Equal(t, "Stück", doc.Items[0].Unit)
	require.Equal(t, 20.0, doc.Items[0].TaxRate)

	doc, err = svc.AddProductItem(ctx, doc.ID, 1)
	require.NoError(t, err)
	require.Len(t, doc.Items, 2)
	require.Equal(t, "Mango", doc.Items[1].Name)
	require.InDelta(t, 15.90, doc.Items[1].Total, 1e-9)
	require.Equal(t, 10.0, doc.Items[1].TaxRate)

	// Same product again bumps quantity instead of adding a row.
	doc, err = svc.AddProductItem(ctx, doc.ID, 1)
	require.NoError(t, err)
	require.Len(t, doc.Items, 2)
	require.Equal(t, 2.0, doc.Items[1].Quantity)
	require.InDelta(t, 31.80, doc.Items[1].Total, 1e-9)
	require.InDelta(t, 31.80, doc.Subtotal, 1e-9)
}

func TestAddProductItemUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)
	doc := createDraft(t, svc)

	_, err := svc.AddProductItem(context.Background(), doc.ID, 99)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestUpdateItemFieldRecomputesAggregates(t *testing.T) {
	svc, _ := newTestService(t)
	doc := createDraft(t, svc)
	ctx := context.Background()

	doc, err := svc.AddProductItem(ctx, doc.ID, 2)
	require.NoError(t, err)
	itemID := doc.Items[0].ID

	doc, err = svc.UpdateItemField(ctx, doc.ID, ledger.SetQuantity{ID: itemID, Value: 4})
	require.NoError(t, err)
	require.InDelta(t, 50.0, doc.Items[0].Total, 1e-9)
	require.InDelta(t, 50.0, doc.Subtotal, 1e-9)
	require.InDelta(t, 10.0, doc.TaxTotal, 1e-9)
	require.InDelta(t, 60.0, doc.Total, 1e-9)
}

func TestAddBatchTextAllOrNothing(t *testing.T) {
	svc, repo := newTestService(t)
	doc := createDraft(t, svc)
	ctx := context.Background()

	_, err := svc.AddBatchText(ctx, doc.ID, "2 x Mango\nx Avocado")
	require.Error(t, err)
	var parseErr *ledger.ParseError
	require.ErrorAs(t, err, &parseErr)

	stored, err := repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Items)

	doc, err = svc.AddBatchText(ctx, doc.ID, "2 x Mango\n1 x Avocado")
	require.NoError(t, err)
	require.Len(t, doc.Items, 2)
	require.InDelta(t, 31.80, doc.Items[0].Total, 1e-9)
	require.InDelta(t, 12.50, doc.Items[1].Total, 1e-9)
	require.InDelta(t, 44.30, doc.Subtotal, 1e-9)
}

func TestMoveItem(t *testing.T) {
	svc, _ := newTestService(t)
	doc := createDraft(t, svc)
	ctx := context.Background()

	doc, err := svc.AddBatchText(ctx, doc.ID, "1 x Mango\n1 x Avocado")
	require.NoError(t, err)
	first, second := doc.Items[0].ID, doc.Items[1].ID

	doc, err = svc.MoveItem(ctx, doc.ID, second, MoveDirectionUp)
	require.NoError(t, err)
	require.Equal(t, second, doc.Items[0].ID)
	require.Less(t, doc.Items[0].Position, doc.Items[1].Position)

	// Moving the top item further up is a no-op.
	doc, err = svc.MoveItem(ctx, doc.ID, second, MoveDirectionUp)
	require.NoError(t, err)
	require.Equal(t, second, doc.Items[0].ID)
	require.Equal(t, first, doc.Items[1].ID)
}

func TestFinalizeFreezesDocument(t *testing.T) {
	svc, _ := newTestService(t)
	doc := createDraft(t, svc)
	ctx := context.Background()

	doc, err := svc.AddBatchText(ctx, doc.ID, "1 x Mango\n1 x Avocado\n1 x Ingwer")
	require.NoError(t, err)

	doc, err = svc.Finalize(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFinalized, doc.Status)
	require.Equal(t, []int64{10, 20, 30}, []int64{doc.Items[0].Position, doc.Items[1].Position, doc.Items[2].Position})

	_, err = svc.AddItem(ctx, doc.ID)
	require.ErrorIs(t, err, ErrFinalized)
	_, err = svc.RemoveItem(ctx, doc.ID, doc.Items[0].ID)
	require.ErrorIs(t, err, ErrFinalized)
	_, err = svc.Finalize(ctx, doc.ID)
	require.ErrorIs(t, err, ErrFinalized)
	err = svc.Delete(ctx, doc.ID)
	require.ErrorIs(t, err, ErrFinalized)
}

func TestBindItemProduct(t *testing.T) {
	svc, _ := newTestService(t)
	doc := createDraft(t, svc)
	ctx := context.Background()

	doc, err := svc.AddItem(ctx, doc.ID)
	require.NoError(t, err)
	itemID := doc.Items[0].ID

	doc, err = svc.UpdateItemField(ctx, doc.ID, ledger.SetQuantity{ID: itemID, Value: 3})
	require.NoError(t, err)
	doc, err = svc.UpdateItemField(ctx, doc.ID, ledger.SetDiscount{ID: itemID, Value: 10})
	require.NoError(t, err)

	doc, err = svc.BindItemProduct(ctx, doc.ID, itemID, 1)
	require.NoError(t, err)
	it := doc.Items[0]
	require.Equal(t, "Mango", it.Name)
	require.Equal(t, 3.0, it.Quantity)
	require.Equal(t, 10.0, it.Discount)
	require.InDelta(t, 3*15.90*0.9, it.Total, 1e-9)
}

func TestRemoveItemIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	doc := createDraft(t, svc)
	ctx := context.Background()

	doc, err := svc.AddProductItem(ctx, doc.ID, 1)
	require.NoError(t, err)
	itemID := doc.Items[0].ID

	doc, err = svc.RemoveItem(ctx, doc.ID, itemID)
	require.NoError(t, err)
	require.Empty(t, doc.Items)
	require.Zero(t, doc.Total)

	doc, err = svc.RemoveItem(ctx, doc.ID, itemID)
	require.NoError(t, err)
	require.Empty(t, doc.Items)
}
