package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lumapos/backoffice/internal/domain"
)

type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// Insert records a payment and returns its assigned id.
func (r *PaymentRepo) Insert(p *domain.Payment) (int64, error) {
	res, err := r.db.Exec(
		`INSERT INTO payments (order_id, amount, payment_method_id, payment_date)
		VALUES (?,?,?,?)`,
		p.OrderID, string(p.Amount), p.PaymentMethodID, p.PaymentDate.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (r *PaymentRepo) BulkInsert(payments []domain.Payment) (int, error) {
	inserted := 0
	sqlTx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.Prepare(
		`INSERT OR IGNORE INTO payments (id, order_id, amount, payment_method_id, payment_date)
		VALUES (?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range payments {
		p := &payments[i]
		res, err := stmt.Exec(
			p.ID, p.OrderID, string(p.Amount), p.PaymentMethodID,
			p.PaymentDate.Format(time.RFC3339),
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

func (r *PaymentRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM payments").Scan(&count)
	return count, err
}

// ListByOrder returns all payments recorded against an order, oldest first.
func (r *PaymentRepo) ListByOrder(orderID int64) ([]domain.Payment, error) {
	rows, err := r.db.Query(
		`SELECT id, order_id, amount, payment_method_id, payment_date
		FROM payments WHERE order_id = ? ORDER BY payment_date`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

// ListAll returns every payment grouped per order for batch roll-ups.
func (r *PaymentRepo) ListAll() (map[int64][]domain.Payment, error) {
	rows, err := r.db.Query(
		`SELECT id, order_id, amount, payment_method_id, payment_date
		FROM payments ORDER BY payment_date`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[int64][]domain.Payment)
	payments, err := collectPayments(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		byOrder[p.OrderID] = append(byOrder[p.OrderID], p)
	}
	return byOrder, nil
}

func collectPayments(rows *sql.Rows) ([]domain.Payment, error) {
	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		var amount, paymentDate string
		if err := rows.Scan(&p.ID, &p.OrderID, &amount, &p.PaymentMethodID, &paymentDate); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		p.Amount = domain.Amount(amount)
		t, err := time.Parse(time.RFC3339, paymentDate)
		if err != nil {
			return nil, fmt.Errorf("parse payment_date: %w", err)
		}
		p.PaymentDate = t
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
