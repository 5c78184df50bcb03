package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = "id, name, art_nr, price, unit, product_group, stock, description, tax_rate, is_active, created_at, updated_at"

// Repository provides PostgreSQL backed persistence for the catalog.
type Repository interface {
	List(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
	ListActive(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, form ProductForm) (Product, error)
	Update(ctx context.Context, id int64, form ProductForm) (Product, error)
	Deactivate(ctx context.Context, id int64) error
	Upsert(ctx context.Context, forms []ProductForm) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM products WHERE 1=1`
	args := []any{}

	// The SQL search mirrors the in-memory matcher: any of the four text
	// fields matching includes the product.
	if req.Search != "" {
		args = append(args, "%"+req.Search+"%")
		n := strconv.Itoa(len(args))
		cond := ` AND (name ILIKE $` + n + ` OR art_nr ILIKE $` + n + ` OR product_group ILIKE $` + n + ` OR description ILIKE $` + n + `)`
		query += cond
		countQuery += cond
	}
	if req.Group != "" {
		args = append(args, req.Group)
		cond := ` AND product_group = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}
	if req.IsActive != nil {
		args = append(args, *req.IsActive)
		cond := ` AND is_active = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY id`
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

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, form ProductForm) (Product, error) {
	now := time.Now()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, art_nr, price, unit, product_group, stock, description, tax_rate, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true, $9, $9)
		RETURNING `+productColumns,
		form.Name, form.ArtNr, form.Price, form.Unit, form.Group, form.Stock, form.Description, form.TaxRate, now)
	p, err := scanProduct(row)
	if isUniqueViolation(err) {
		return Product{}, ErrAlreadyExists
	}
	return p, err
}

func (r *repository) Update(ctx context.Context, id int64, form ProductForm) (Product, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, art_nr = $3, price = $4, unit = $5, product_group = $6, stock = $7, description = $8, tax_rate = $9, updated_at = $10
		WHERE id = $1
		RETURNING `+productColumns,
		id, form.Name, form.ArtNr, form.Price, form.Unit, form.Group, form.Stock, form.Description, form.TaxRate, time.Now())
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_active = false, updated_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert inserts or refreshes products by article number in one
// transaction. Used by the background import job.
func (r *repository) Upsert(ctx context.Context, forms []ProductForm) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	count := 0
	now := time.Now()
	for _, form := range forms {
		_, err := tx.Exec(ctx, `
			INSERT INTO products (name, art_nr, price, unit, product_group, stock, description, tax_rate, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true, $9, $9)
			ON CONFLICT (art_nr) WHERE art_nr <> ''
			DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, unit = EXCLUDED.unit,
				product_group = EXCLUDED.product_group, stock = EXCLUDED.stock,
				description = EXCLUDED.description, tax_rate = EXCLUDED.tax_rate,
				is_active = true, updated_at = EXCLUDED.updated_at`,
			form.Name, form.ArtNr, form.Price, form.Unit, form.Group, form.Stock, form.Description, form.TaxRate, now)
		if err != nil {
			return 0, err
		}
		count++
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return count, nil
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.ArtNr, &p.Price, &p.Unit, &p.Group, &p.Stock, &p.Description, &p.TaxRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
