package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lumapos/backoffice/internal/domain"
)

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) Insert(p *domain.Product) (int64, error) {
	res, err := r.db.Exec(
		`INSERT INTO products (sku, name, category, price, barcode, created_at)
		VALUES (?,?,?,?,?,?)`,
		p.SKU, p.Name, p.Category, string(p.Price), p.Barcode,
		p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// BulkInsert inserts products, skipping rows whose SKU already exists.
func (r *ProductRepo) BulkInsert(products []domain.Product) (int, error) {
	inserted := 0
	sqlTx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.Prepare(
		`INSERT OR IGNORE INTO products (sku, name, category, price, barcode, created_at)
		VALUES (?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range products {
		p := &products[i]
		res, err := stmt.Exec(
			p.SKU, p.Name, p.Category, string(p.Price), p.Barcode,
			p.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return inserted, fmt.Errorf("insert row %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (r *ProductRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count)
	return count, err
}

func (r *ProductRepo) GetByID(id int64) (*domain.Product, error) {
	row := r.db.QueryRow(
		"SELECT id, sku, name, category, price, barcode, created_at FROM products WHERE id = ?",
		id,
	)
	return scanProduct(row)
}

func (r *ProductRepo) GetBySKU(sku string) (*domain.Product, error) {
	row := r.db.QueryRow(
		"SELECT id, sku, name, category, price, barcode, created_at FROM products WHERE sku = ?",
		sku,
	)
	return scanProduct(row)
}

type ProductFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

func (r *ProductRepo) List(f ProductFilter) ([]domain.Product, int, error) {
	var conds []string
	var args []any

	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.Search != "" {
		conds = append(conds, "(name LIKE ? OR sku LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	querySQL := "SELECT id, sku, name, category, price, barcode, created_at FROM products" +
		where + " ORDER BY name LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var price, createdAt string
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &price, &p.Barcode, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		p.Price = domain.Amount(price)
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, 0, fmt.Errorf("parse created_at: %w", err)
		}
		p.CreatedAt = t
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *ProductRepo) UpdatePrice(id int64, price domain.Amount) error {
	_, err := r.db.Exec("UPDATE products SET price = ? WHERE id = ?", string(price), id)
	if err != nil {
		return fmt.Errorf("update price: %w", err)
	}
	return nil
}

// AssignBarcode stores an allocated barcode on a product.
func (r *ProductRepo) AssignBarcode(id int64, code string) error {
	_, err := r.db.Exec("UPDATE products SET barcode = ? WHERE id = ?", code, id)
	if err != nil {
		return fmt.Errorf("assign barcode: %w", err)
	}
	return nil
}

// NextBarcodeSequence increments and returns the per-prefix barcode counter.
func (r *ProductRepo) NextBarcodeSequence(prefix string) (int64, error) {
	sqlTx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.Exec(
		"INSERT INTO barcode_sequences (prefix, next_value) VALUES (?, 0) ON CONFLICT(prefix) DO NOTHING",
		prefix,
	); err != nil {
		return 0, fmt.Errorf("ensure sequence: %w", err)
	}
	if _, err := sqlTx.Exec(
		"UPDATE barcode_sequences SET next_value = next_value + 1 WHERE prefix = ?",
		prefix,
	); err != nil {
		return 0, fmt.Errorf("bump sequence: %w", err)
	}

	var next int64
	if err := sqlTx.QueryRow(
		"SELECT next_value FROM barcode_sequences WHERE prefix = ?", prefix,
	).Scan(&next); err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

func scanProduct(row *sql.Row) (*domain.Product, error) {
	var p domain.Product
	var price, createdAt string
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &price, &p.Barcode, &createdAt); err != nil {
		return nil, err
	}
	p.Price = domain.Amount(price)
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	p.CreatedAt = t
	return &p, nil
}
