package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lumapos/backoffice/internal/domain"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Insert(o *domain.Order) error {
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO orders
		(id, final_total, discount, total_price, tax, status_id, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		o.ID, string(o.FinalTotal), string(o.Discount), string(o.TotalPrice),
		string(o.Tax), o.StatusID, o.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepo) BulkInsert(orders []domain.Order) (int, error) {
	inserted := 0
	sqlTx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.Prepare(
		`INSERT OR IGNORE INTO orders
		(id, final_total, discount, total_price, tax, status_id, created_at)
		VALUES (?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range orders {
		o := &orders[i]
		res, err := stmt.Exec(
			o.ID, string(o.FinalTotal), string(o.Discount), string(o.TotalPrice),
			string(o.Tax), o.StatusID, o.CreatedAt.Format(time.RFC3339),
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

func (r *OrderRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&count)
	return count, err
}

func (r *OrderRepo) GetByID(id int64) (*domain.Order, error) {
	row := r.db.QueryRow(
		"SELECT id, final_total, discount, total_price, tax, status_id, created_at FROM orders WHERE id = ?",
		id,
	)
	return scanOrder(row)
}

type OrderFilter struct {
	StatusID int
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

func (r *OrderRepo) List(f OrderFilter) ([]domain.Order, int, error) {
	where, args := buildOrderWhere(f)

	var total int
	countSQL := "SELECT COUNT(*) FROM orders" + where
	if err := r.db.QueryRow(countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	querySQL := "SELECT id, final_total, discount, total_price, tax, status_id, created_at FROM orders" +
		where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrderRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, total, rows.Err()
}

// ListAll returns every order, oldest first. Used for dashboard roll-ups.
func (r *OrderRepo) ListAll() ([]domain.Order, error) {
	rows, err := r.db.Query(
		"SELECT id, final_total, discount, total_price, tax, status_id, created_at FROM orders ORDER BY created_at",
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrderRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func buildOrderWhere(f OrderFilter) (string, []any) {
	var conds []string
	var args []any

	if f.StatusID != 0 {
		conds = append(conds, "status_id = ?")
		args = append(args, f.StatusID)
	}
	if f.From != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.From.Format(time.RFC3339))
	}
	if f.To != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, f.To.Format(time.RFC3339))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type orderScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row *sql.Row) (*domain.Order, error) {
	return scanOrderFrom(row)
}

func scanOrderRows(rows *sql.Rows) (*domain.Order, error) {
	return scanOrderFrom(rows)
}

func scanOrderFrom(s orderScanner) (*domain.Order, error) {
	var o domain.Order
	var finalTotal, discount, totalPrice, tax, createdAt string

	if err := s.Scan(&o.ID, &finalTotal, &discount, &totalPrice, &tax, &o.StatusID, &createdAt); err != nil {
		return nil, err
	}

	o.FinalTotal = domain.Amount(finalTotal)
	o.Discount = domain.Amount(discount)
	o.TotalPrice = domain.Amount(totalPrice)
	o.Tax = domain.Amount(tax)

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	o.CreatedAt = t

	return &o, nil
}
