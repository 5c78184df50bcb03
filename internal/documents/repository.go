package documents

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohamedwhb/postenwerk/internal/ledger"
)

// Repository provides PostgreSQL backed persistence for documents. Items
// are stored as one row per line item so every engine field round-trips
// losslessly.
type Repository interface {
	Get(ctx context.Context, id int64) (*Document, error)
	List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error)
	Create(ctx context.Context, doc Document) (int64, error)
	UpdateHeader(ctx context.Context, id int64, req UpdateDocumentRequest) error
	UpdateStatus(ctx context.Context, id int64, status DocumentStatus) error
	ReplaceItems(ctx context.Context, id int64, items []ledger.LineItem, totals ledger.DocumentTotals) error
	Delete(ctx context.Context, id int64) error
	GenerateDocNumber(ctx context.Context, kind DocumentKind, date time.Time) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const documentColumns = "id, doc_number, kind, status, customer_name, notes, default_tax_rate, subtotal, tax_total, total, created_at, updated_at"

const itemColumns = "item_id, position, product_id, name, art_nr, description, unit, quantity, price, discount, tax_rate, total"

func (r *repository) Get(ctx context.Context, id int64) (*Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM document_items WHERE document_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it ledger.LineItem
		if err := rows.Scan(&it.ID, &it.Position, &it.ProductID, &it.Name, &it.ArtNr, &it.Description,
			&it.Unit, &it.Quantity, &it.Price, &it.Discount, &it.TaxRate, &it.Total); err != nil {
			return nil, err
		}
		doc.Items = append(doc.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repository) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM documents WHERE 1=1`
	args := []any{}

	if req.Kind != nil {
		args = append(args, *req.Kind)
		cond := ` AND kind = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}
	if req.Status != nil {
		args = append(args, *req.Status)
		cond := ` AND status = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}
	if req.Search != "" {
		args = append(args, "%"+req.Search+"%")
		n := strconv.Itoa(len(args))
		cond := ` AND (doc_number ILIKE $` + n + ` OR customer_name ILIKE $` + n + `)`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY id DESC`
	if req.Limit > 0 {
		args = append(args, req.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, req.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	return docs, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, doc Document) (int64, error) {
	now := time.Now()
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO documents (doc_number, kind, status, customer_name, notes, default_tax_rate, subtotal, tax_total, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 0, $7, $7)
		RETURNING id`,
		doc.DocNumber, doc.Kind, doc.Status, doc.CustomerName, doc.Notes, doc.DefaultTaxRate, now).Scan(&id)
	return id, err
}

func (r *repository) UpdateHeader(ctx context.Context, id int64, req UpdateDocumentRequest) error {
	query := `UPDATE documents SET updated_at = $1`
	args := []any{time.Now()}

	if req.CustomerName != nil {
		args = append(args, *req.CustomerName)
		query += `, customer_name = $` + strconv.Itoa(len(args))
	}
	if req.Notes != nil {
		args = append(args, *req.Notes)
		query += `, notes = $` + strconv.Itoa(len(args))
	}
	if req.DefaultTaxRate != nil {
		args = append(args, *req.DefaultTaxRate)
		query += `, default_tax_rate = $` + strconv.Itoa(len(args))
	}

	args = append(args, id)
	query += ` WHERE id = $` + strconv.Itoa(len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status DocumentStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE documents SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceItems stores the next item collection and the derived document
// aggregates in one repeatable-read transaction.
func (r *repository) ReplaceItems(ctx context.Context, id int64, items []ledger.LineItem, totals ledger.DocumentTotals) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM document_items WHERE document_id = $1`, id); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	for _, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO document_items (document_id, item_id, position, product_id, name, art_nr, description, unit, quantity, price, discount, tax_rate, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			id, it.ID, it.Position, it.ProductID, it.Name, it.ArtNr, it.Description,
			it.Unit, it.Quantity, it.Price, it.Discount, it.TaxRate, it.Total)
		if err != nil {
			return fmt.Errorf("insert item %d: %w", it.ID, err)
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE documents SET subtotal = $2, tax_total = $3, total = $4, updated_at = $5 WHERE id = $1`,
		id, totals.Subtotal, totals.TaxTotal, totals.GrandTotal, time.Now())
	if err != nil {
		return fmt.Errorf("update totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GenerateDocNumber produces the next sequential number per kind and
// year, e.g. "AN-2026-0042" for offers.
func (r *repository) GenerateDocNumber(ctx context.Context, kind DocumentKind, date time.Time) (string, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM documents
		WHERE kind = $1 AND created_at >= date_trunc('year', $2::timestamptz)`, kind, date).Scan(&count)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%04d", docNumberPrefix(kind), date.Year(), count+1), nil
}

func docNumberPrefix(kind DocumentKind) string {
	switch kind {
	case KindOffer:
		return "AN"
	case KindInvoice:
		return "RE"
	case KindDeliveryNote:
		return "LS"
	}
	return "DOC"
}

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.DocNumber, &d.Kind, &d.Status, &d.CustomerName, &d.Notes,
		&d.DefaultTaxRate, &d.Subtotal, &d.TaxTotal, &d.Total, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}
