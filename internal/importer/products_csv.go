package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumapos/backoffice/internal/domain"
)

// ParseProductsCSV parses the bulk product upload format.
//
// Expected header:
//
//	sku,name,category,price[,barcode]
//
// A malformed line is skipped and reported in the returned warnings so one
// bad row never blocks the rest of the file.
func ParseProductsCSV(data []byte, now time.Time) ([]domain.Product, []string, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 4 {
		return nil, nil, fmt.Errorf("expected at least 4 columns, got %d", len(header))
	}

	var products []domain.Product
	var warnings []string
	lineNum := 1

	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if len(row) < 4 {
			warnings = append(warnings, fmt.Sprintf("line %d: expected at least 4 columns, got %d", lineNum, len(row)))
			continue
		}

		sku := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		category := strings.TrimSpace(row[2])
		priceStr := strings.TrimSpace(row[3])

		if sku == "" || name == "" {
			warnings = append(warnings, fmt.Sprintf("line %d: missing sku or name", lineNum))
			continue
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil || price.IsNegative() {
			warnings = append(warnings, fmt.Sprintf("line %d: bad price %q", lineNum, priceStr))
			continue
		}

		p := domain.Product{
			SKU:       sku,
			Name:      name,
			Category:  category,
			Price:     domain.Amount(price.StringFixed(2)),
			CreatedAt: now,
		}
		if len(row) > 4 {
			p.Barcode = strings.TrimSpace(row[4])
		}
		products = append(products, p)
	}

	return products, warnings, nil
}
