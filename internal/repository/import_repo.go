package repository

import (
	"database/sql"
	"time"
)

type ImportRepo struct {
	db *sql.DB
}

func NewImportRepo(db *sql.DB) *ImportRepo {
	return &ImportRepo{db: db}
}

// BatchExistsByHash checks whether a file with the given hash has already
// been imported (idempotency check).
func (r *ImportRepo) BatchExistsByHash(hash string) (bool, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM import_batches WHERE file_hash = ?", hash,
	).Scan(&count)
	return count > 0, err
}

func (r *ImportRepo) InsertBatch(id, hash string, recordCount int, importedAt time.Time) error {
	_, err := r.db.Exec(
		`INSERT INTO import_batches (id, file_hash, record_count, imported_at)
		VALUES (?,?,?,?)`,
		id, hash, recordCount, importedAt.Format(time.RFC3339),
	)
	return err
}
