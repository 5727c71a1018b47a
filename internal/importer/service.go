// Package importer handles bulk product uploads from CSV files.
package importer

import (
	"crypto/sha256"
	"fmt"
	"log"
	"time"

	"github.com/lumapos/backoffice/internal/repository"
)

// ImportResult is returned from a successful import.
type ImportResult struct {
	BatchID           string   `json:"batch_id"`
	RecordsImported   int      `json:"records_imported"`
	DuplicatesSkipped int      `json:"duplicates_skipped"`
	Warnings          []string `json:"warnings,omitempty"`
}

// Service imports product catalogs uploaded by back-office operators.
type Service struct {
	productRepo *repository.ProductRepo
	importRepo  *repository.ImportRepo
}

// NewService creates a new import service.
func NewService(productRepo *repository.ProductRepo, importRepo *repository.ImportRepo) *Service {
	return &Service{
		productRepo: productRepo,
		importRepo:  importRepo,
	}
}

// ImportProducts parses a product CSV and stores the rows. Re-uploading the
// same file is a no-op (idempotency via file hash); rows whose SKU already
// exists are skipped.
func (s *Service) ImportProducts(data []byte) (*ImportResult, error) {
	hash := fmt.Sprintf("%x", sha256.Sum256(data))
	exists, err := s.importRepo.BatchExistsByHash(hash)
	if err != nil {
		return nil, fmt.Errorf("check hash: %w", err)
	}
	if exists {
		return &ImportResult{BatchID: "already-imported"}, nil
	}

	now := time.Now().UTC()
	products, warnings, err := ParseProductsCSV(data, now)
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	inserted, err := s.productRepo.BulkInsert(products)
	if err != nil {
		return nil, fmt.Errorf("insert products: %w", err)
	}

	batchID := fmt.Sprintf("IMP-%d", now.UnixNano())
	if err := s.importRepo.InsertBatch(batchID, hash, inserted, now); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	log.Printf("[importer] Imported batch %s: %d rows (%d new, %d skipped lines)",
		batchID, len(products), inserted, len(warnings))

	return &ImportResult{
		BatchID:           batchID,
		RecordsImported:   inserted,
		DuplicatesSkipped: len(products) - inserted,
		Warnings:          warnings,
	}, nil
}
