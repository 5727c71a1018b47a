package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lumapos/backoffice/internal/auth"
	"github.com/lumapos/backoffice/internal/domain"
	"github.com/lumapos/backoffice/internal/importer"
	"github.com/lumapos/backoffice/internal/repository"
)

// Config carries the runtime settings the API layer needs.
type Config struct {
	JWTSecret     []byte
	PasswordSalt  string
	BarcodePrefix string
}

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	orderRepo *repository.OrderRepo,
	paymentRepo *repository.PaymentRepo,
	productRepo *repository.ProductRepo,
	userRepo *repository.UserRepo,
	importSvc *importer.Service,
	cfg Config,
) http.Handler {
	h := &Handlers{
		orderRepo:     orderRepo,
		paymentRepo:   paymentRepo,
		productRepo:   productRepo,
		userRepo:      userRepo,
		importSvc:     importSvc,
		jwtSecret:     cfg.JWTSecret,
		passwordSalt:  cfg.PasswordSalt,
		barcodePrefix: cfg.BarcodePrefix,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(cfg.JWTSecret))

			// Orders and settlement.
			r.Get("/orders", h.ListOrders)
			r.Get("/orders/{id}", h.GetOrder)
			r.Get("/orders/{id}/settlement", h.GetOrderSettlement)
			r.Post("/orders/{id}/payments", h.CreatePayment)

			// Products.
			r.Get("/products", h.ListProducts)
			r.Post("/products/{id}/barcode", h.AllocateBarcode)
			r.With(auth.RequireRole(domain.RoleAdmin)).Post("/products/import", h.ImportProducts)

			// Users.
			r.With(auth.RequireRole(domain.RoleAdmin)).Get("/users", h.ListUsers)

			// Dashboard.
			r.Get("/dashboard", h.GetDashboard)
		})
	})

	return r
}
