// Command generate produces deterministic seed data for local development:
// testdata/orders.json and testdata/payments.json. A few records carry
// deliberate defects (rounding residue, malformed amounts, an absent
// final_total) so the settlement edge cases are exercisable out of the box.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumapos/backoffice/internal/domain"
)

func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	startDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	var orders []domain.Order
	var payments []domain.Payment
	paymentID := int64(0)

	for i := 1; i <= 40; i++ {
		createdAt := startDate.AddDate(0, 0, rng.Intn(14)).Add(
			time.Duration(rng.Intn(24))*time.Hour + time.Duration(rng.Intn(60))*time.Minute,
		)

		gross := decimal.New(int64(500+rng.Intn(49500)), -2) // 5.00 .. 500.00
		discountPct := int64(rng.Intn(4) * 5)                // 0, 5, 10, 15
		discount := decimal.New(discountPct, 0)
		final := gross.Mul(decimal.New(100-discountPct, -2)).Round(2)
		tax := final.Mul(decimal.New(19, -2)).Round(2)

		statusID := 1 + rng.Intn(4)

		o := domain.Order{
			ID:         int64(i),
			FinalTotal: domain.Amount(final.StringFixed(2)),
			Discount:   domain.Amount(discount.String()),
			TotalPrice: domain.Amount(gross.StringFixed(2)),
			Tax:        domain.Amount(tax.StringFixed(2)),
			StatusID:   statusID,
			CreatedAt:  createdAt,
		}

		// Every 10th order carries an unmapped status id.
		if i%10 == 0 {
			o.StatusID = 7
		}
		// One order with a missing final total, as seen in upstream lag.
		if i == 13 {
			o.FinalTotal = ""
		}

		orders = append(orders, o)

		// Payments: none for awaiting-payment orders, partial or full
		// otherwise, sometimes with a small rounding residue left over.
		if statusID == 1 || i == 13 {
			continue
		}
		remaining := final
		parts := 1 + rng.Intn(3)
		for p := 0; p < parts && remaining.IsPositive(); p++ {
			paymentID++
			amount := remaining
			if p < parts-1 {
				amount = remaining.Mul(decimal.New(int64(30+rng.Intn(40)), -2)).Round(2)
			} else if rng.Intn(5) == 0 {
				// Leave a few cents of residue for the tolerance clamp.
				amount = remaining.Sub(decimal.New(int64(1+rng.Intn(5)), -2))
			}
			remaining = remaining.Sub(amount)

			payments = append(payments, domain.Payment{
				ID:              paymentID,
				OrderID:         int64(i),
				Amount:          domain.Amount(amount.StringFixed(2)),
				PaymentMethodID: []int{2, 3, 4}[rng.Intn(3)],
				PaymentDate:     createdAt.Add(time.Duration(1+rng.Intn(72)) * time.Hour),
			})
		}
	}

	// A malformed payment record, as delivered by the upstream API on
	// occasion. The calculator must skip-and-report it.
	paymentID++
	payments = append(payments, domain.Payment{
		ID:              paymentID,
		OrderID:         2,
		Amount:          "n/a",
		PaymentMethodID: 2,
		PaymentDate:     startDate.AddDate(0, 0, 5),
	})

	writeJSON(filepath.Join(baseDir, "orders.json"), orders)
	writeJSON(filepath.Join(baseDir, "payments.json"), payments)

	log.Printf("Generated %d orders and %d payments", len(orders), len(payments))
}

func writeJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
	fmt.Printf("wrote %s\n", path)
}

func findTestdataDir() string {
	candidates := []string{"testdata", filepath.Join("..", "..", "testdata")}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return "testdata"
}
