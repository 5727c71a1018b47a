package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lumapos/backoffice/internal/api"
	"github.com/lumapos/backoffice/internal/auth"
	"github.com/lumapos/backoffice/internal/domain"
	"github.com/lumapos/backoffice/internal/importer"
	"github.com/lumapos/backoffice/internal/repository"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "backoffice.db"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
		log.Println("WARNING: JWT_SECRET not set, using development default")
	}

	salt := os.Getenv("PASSWORD_SALT")
	if salt == "" {
		salt = "lumapos"
	}

	barcodePrefix := os.Getenv("BARCODE_PREFIX")
	if barcodePrefix == "" {
		// 200-299 is the GS1 range reserved for in-store use.
		barcodePrefix = "200"
	}

	log.Printf("Initializing database at %s", dbPath)
	db, err := repository.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	// Create repositories.
	orderRepo := repository.NewOrderRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	productRepo := repository.NewProductRepo(db)
	userRepo := repository.NewUserRepo(db)
	importRepo := repository.NewImportRepo(db)

	// Create services.
	importSvc := importer.NewService(productRepo, importRepo)

	// Seed source data if the DB is empty.
	if err := seedIfEmpty(orderRepo, paymentRepo, userRepo, salt); err != nil {
		log.Printf("WARNING: seed failed: %v", err)
	}

	// Create router.
	router := api.NewRouter(orderRepo, paymentRepo, productRepo, userRepo, importSvc, api.Config{
		JWTSecret:     []byte(secret),
		PasswordSalt:  salt,
		BarcodePrefix: barcodePrefix,
	})

	log.Printf("LumaPOS Back-Office")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("API base: http://localhost:%s/api/v1", port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  POST   /api/v1/auth/login")
	log.Printf("  GET    /api/v1/orders")
	log.Printf("  GET    /api/v1/orders/{id}")
	log.Printf("  GET    /api/v1/orders/{id}/settlement")
	log.Printf("  POST   /api/v1/orders/{id}/payments")
	log.Printf("  GET    /api/v1/products")
	log.Printf("  POST   /api/v1/products/import")
	log.Printf("  POST   /api/v1/products/{id}/barcode")
	log.Printf("  GET    /api/v1/users")
	log.Printf("  GET    /api/v1/dashboard")

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func seedIfEmpty(
	orderRepo *repository.OrderRepo,
	paymentRepo *repository.PaymentRepo,
	userRepo *repository.UserRepo,
	salt string,
) error {
	userCount, err := userRepo.Count()
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if userCount == 0 {
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			password = "admin"
			log.Println("WARNING: ADMIN_PASSWORD not set, using development default")
		}
		_, err := userRepo.Insert(&domain.User{
			Name:         "Administrator",
			Email:        "admin@lumapos.local",
			Role:         domain.RoleAdmin,
			PasswordHash: auth.HashPassword(password, salt),
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}
		log.Println("Seeded admin user admin@lumapos.local")
	}

	orderCount, err := orderRepo.Count()
	if err != nil {
		return fmt.Errorf("count orders: %w", err)
	}
	if orderCount > 0 {
		log.Printf("Database already has %d orders, skipping seed", orderCount)
		return nil
	}

	log.Println("Database is empty, seeding orders from testdata...")

	var orders []domain.Order
	if err := loadSeed("orders.json", &orders); err != nil {
		return err
	}
	inserted, err := orderRepo.BulkInsert(orders)
	if err != nil {
		return fmt.Errorf("bulk insert orders: %w", err)
	}
	log.Printf("Seeded %d orders (out of %d in file)", inserted, len(orders))

	var payments []domain.Payment
	if err := loadSeed("payments.json", &payments); err != nil {
		return err
	}
	inserted, err = paymentRepo.BulkInsert(payments)
	if err != nil {
		return fmt.Errorf("bulk insert payments: %w", err)
	}
	log.Printf("Seeded %d payments (out of %d in file)", inserted, len(payments))

	return nil
}

func loadSeed(name string, v any) error {
	// Try multiple possible locations for testdata.
	candidates := []string{
		filepath.Join("testdata", name),
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, "testdata", name),
			filepath.Join(dir, "..", "..", "testdata", name),
		)
	}

	var data []byte
	var loadErr error
	for _, path := range candidates {
		data, loadErr = os.ReadFile(path)
		if loadErr == nil {
			log.Printf("Loaded %s from %s", name, path)
			break
		}
	}
	if loadErr != nil {
		return fmt.Errorf("could not find %s in any candidate path: %w", name, loadErr)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}
