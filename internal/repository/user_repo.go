package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lumapos/backoffice/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Insert(u *domain.User) (int64, error) {
	res, err := r.db.Exec(
		`INSERT INTO users (name, email, role, password_hash, created_at)
		VALUES (?,?,?,?,?)`,
		u.Name, u.Email, string(u.Role), u.PasswordHash,
		u.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (r *UserRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

func (r *UserRepo) GetByEmail(email string) (*domain.User, error) {
	row := r.db.QueryRow(
		"SELECT id, name, email, role, password_hash, created_at FROM users WHERE email = ?",
		email,
	)
	var u domain.User
	var role, createdAt string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PasswordHash, &createdAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	u.CreatedAt = t
	return &u, nil
}

func (r *UserRepo) List() ([]domain.User, error) {
	rows, err := r.db.Query(
		"SELECT id, name, email, role, password_hash, created_at FROM users ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var role, createdAt string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PasswordHash, &createdAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		u.Role = domain.Role(role)
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		u.CreatedAt = t
		users = append(users, u)
	}
	return users, rows.Err()
}
