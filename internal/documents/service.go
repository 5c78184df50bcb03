package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/mohamedwhb/postenwerk/internal/catalog"
	"github.com/mohamedwhb/postenwerk/internal/ledger"
)

// CatalogProvider supplies product data to the item operations. Satisfied
// by catalog.Service.
type CatalogProvider interface {
	Snapshot(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id int64) (catalog.Product, error)
}

// Service drives document lifecycle and line-item mutations. Every item
// mutation runs the pure transforms against the loaded collection and
// persists the result together with the recomputed aggregates.
type Service struct {
	repo           Repository
	catalog        CatalogProvider
	defaultTaxRate float64
}

// NewService constructs a documents service. defaultTaxRate is the
// application-wide tax rate applied when neither the document nor the
// product carries its own.
func NewService(repo Repository, provider CatalogProvider, defaultTaxRate float64) *Service {
	return &Service{repo: repo, catalog: provider, defaultTaxRate: defaultTaxRate}
}

// Create opens a new draft document with a generated document number.
func (s *Service) Create(ctx context.Context, req CreateDocumentRequest) (*Document, error) {
	number, err := s.repo.GenerateDocNumber(ctx, req.Kind, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate doc number: %w", err)
	}

	rate := s.defaultTaxRate
	if req.DefaultTaxRate != nil {
		rate = *req.DefaultTaxRate
	}

	id, err := s.repo.Create(ctx, Document{
		DocNumber:      number,
		Kind:           req.Kind,
		Status:         StatusDraft,
		CustomerName:   req.CustomerName,
		Notes:          req.Notes,
		DefaultTaxRate: rate,
	})
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Get loads one document with its items in position order.
func (s *Service) Get(ctx context.Context, id int64) (*Document, error) {
	return s.repo.Get(ctx, id)
}

// List returns a filtered, paginated document listing.
func (s *Service) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	return s.repo.List(ctx, req)
}

// UpdateHeader changes header fields of a draft document.
func (s *Service) UpdateHeader(ctx context.Context, id int64, req UpdateDocumentRequest) (*Document, error) {
	if _, err := s.draft(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateHeader(ctx, id, req); err != nil {
		return nil, fmt.Errorf("update document %d: %w", id, err)
	}
	return s.repo.Get(ctx, id)
}

// Finalize freezes the document. Positions are compacted first so the
// rendered document counts 10, 20, 30 without gaps. Finalizing twice is
// an error.
func (s *Service) Finalize(ctx context.Context, id int64) (*Document, error) {
	doc, err := s.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	items := ledger.Renumber(doc.Items)
	if err := s.repo.ReplaceItems(ctx, id, items, ledger.Totals(items)); err != nil {
		return nil, fmt.Errorf("renumber document %d: %w", id, err)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusFinalized); err != nil {
		return nil, fmt.Errorf("finalize document %d: %w", id, err)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a draft document. Finalized documents stay on record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.draft(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AddItem appends a blank line item to a draft.
func (s *Service) AddItem(ctx context.Context, docID int64) (*Document, error) {
	doc, err := s.draft(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, docID, ledger.AddEmpty(doc.Items, doc.DefaultTaxRate))
}

// AddProductItem appends a line item bound to a catalog product, or bumps
// the quantity when an item with the same name already exists.
func (s *Service) AddProductItem(ctx context.Context, docID, productID int64) (*Document, error) {
	doc, err := s.draft(ctx, docID)
	if err != nil {
		return nil, err
	}
	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", productID, err)
	}
	return s.persist(ctx, docID, ledger.AddFromProduct(doc.Items, product, doc.DefaultTaxRate))
}

// UpdateItemField applies one single-field command to an item. Unknown
// item ids are no-ops, matching the engine semantics.
func (s *Service) UpdateItemField(ctx context.Context, docID int64, cmd ledger.Command) (*Document, error) {
	doc, err := s.draft(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, docID, ledger.Apply(doc.Items, cmd))
}

// BindItemProduct overwrites an item's snapshot fields from the catalog
// product, keeping quantity and discount.
func (s *Service) BindItemProduct(ctx context.Context, docID, itemID, productID int64) (*Document, error) {
	doc, err := s.draft(ctx, docID)
	if err != nil {
		return nil, err
	}
	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", productID, err)
	}
	return s.persist(ctx, docID, ledger.BindProduct(doc.Items, itemID, product, doc.DefaultTaxRate))
}

// RemoveItem deletes an item from a draft. Removing an unknown id is a
// no-op.
func (s *Service) RemoveItem(ctx context.Context, docID, itemID int64) (*Document, error) {
	doc, err := s.draft(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, docID, ledger.Remove(doc.Items, itemID))
}

// MoveItem swaps an item with its neighbour in the given direction. Moves
// past the collection boundary are no-ops.
func (s *Service) MoveItem(ctx context.Context, docID, itemID int64, direction MoveDirection) (*Document, error) {
	doc, err := s.draft(ctx, docID)
	if err != nil {
		return nil, err
	}
	index := indexOf(doc.Items, itemID)
	if index < 0 {
		return doc, nil
	}
	var items []ledger.LineItem
	switch direction {
	case MoveDirectionDown:
		items = ledger.MoveDown(doc.Items, index)
	default:
		items = ledger.MoveUp(doc.Items, index)
	}
	return s.persist(ctx, docID, items)
}

// RenumberItems compacts positions back to the 10, 20, 30 sequence.
func (s *Service) RenumberItems(ctx context.Context, docID int64) (*Document, error) {
	doc, err := s.draft(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, docID, ledger.Renumber(doc.Items))
}

// AddBatchText parses multi-line free text against the current catalog
// snapshot and appends the resulting items. One invalid line rejects the
// whole batch and the document stays unchanged.
func (s *Service) AddBatchText(ctx context.Context, docID int64, text string) (*Document, error) {
	doc, err := s.draft(ctx, docID)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog snapshot: %w", err)
	}
	items, err := ledger.ParseBatch(text, products, doc.Items, doc.DefaultTaxRate)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, docID, items)
}

// draft loads a document and rejects mutations on finalized ones.
func (s *Service) draft(ctx context.Context, id int64) (*Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status == StatusFinalized {
		return nil, ErrFinalized
	}
	return doc, nil
}

func (s *Service) persist(ctx context.Context, docID int64, items []ledger.LineItem) (*Document, error) {
	if err := s.repo.ReplaceItems(ctx, docID, items, ledger.Totals(items)); err != nil {
		return nil, fmt.Errorf("store items for document %d: %w", docID, err)
	}
	return s.repo.Get(ctx, docID)
}

func indexOf(items []ledger.LineItem, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
