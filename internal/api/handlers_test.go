package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumapos/backoffice/internal/auth"
	"github.com/lumapos/backoffice/internal/domain"
	"github.com/lumapos/backoffice/internal/importer"
	"github.com/lumapos/backoffice/internal/repository"
)

var testCfg = Config{
	JWTSecret:     []byte("test-secret"),
	PasswordSalt:  "test-salt",
	BarcodePrefix: "200",
}

type testEnv struct {
	db     *sql.DB
	router http.Handler
	admin  string
	staff  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repository.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	orderRepo := repository.NewOrderRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	productRepo := repository.NewProductRepo(db)
	userRepo := repository.NewUserRepo(db)
	importSvc := importer.NewService(productRepo, repository.NewImportRepo(db))

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	orders := []domain.Order{
		{ID: 1, FinalTotal: "100.00", StatusID: 4, CreatedAt: now},
		{ID: 2, FinalTotal: "250.00", StatusID: 1, CreatedAt: now},
		{ID: 3, FinalTotal: "-5.00", StatusID: 2, CreatedAt: now},
	}
	_, err = orderRepo.BulkInsert(orders)
	require.NoError(t, err)

	payments := []domain.Payment{
		{ID: 1, OrderID: 1, Amount: "60.00", PaymentMethodID: 2, PaymentDate: now},
		{ID: 2, OrderID: 1, Amount: "39.97", PaymentMethodID: 4, PaymentDate: now},
	}
	_, err = paymentRepo.BulkInsert(payments)
	require.NoError(t, err)

	adminUser := &domain.User{
		Name: "Ana", Email: "ana@example.com", Role: domain.RoleAdmin,
		PasswordHash: auth.HashPassword("hunter2", testCfg.PasswordSalt),
		CreatedAt:    now,
	}
	adminUser.ID, err = userRepo.Insert(adminUser)
	require.NoError(t, err)

	staffUser := &domain.User{
		Name: "Ben", Email: "ben@example.com", Role: domain.RoleStaff,
		PasswordHash: auth.HashPassword("hunter2", testCfg.PasswordSalt),
		CreatedAt:    now,
	}
	staffUser.ID, err = userRepo.Insert(staffUser)
	require.NoError(t, err)

	adminToken, err := auth.IssueToken(testCfg.JWTSecret, adminUser, time.Now())
	require.NoError(t, err)
	staffToken, err := auth.IssueToken(testCfg.JWTSecret, staffUser, time.Now())
	require.NoError(t, err)

	router := NewRouter(orderRepo, paymentRepo, productRepo, userRepo, importSvc, testCfg)

	return &testEnv{db: db, router: router, admin: adminToken, staff: staffToken}
}

func (e *testEnv) request(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestGetOrderSettlement(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/orders/1/settlement", env.staff, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OrderID    int64 `json:"order_id"`
		Settlement struct {
			TotalPaid   string   `json:"total_paid"`
			Outstanding string   `json:"outstanding"`
			Status      string   `json:"status"`
			Warnings    []string `json:"warnings"`
		} `json:"settlement"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, int64(1), resp.OrderID)
	assert.Equal(t, "99.97", resp.Settlement.TotalPaid)
	assert.Equal(t, "0.00", resp.Settlement.Outstanding)
	assert.Equal(t, "SETTLED", resp.Settlement.Status)
	assert.Empty(t, resp.Settlement.Warnings)
}

func TestGetOrderSettlementNoPayments(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/orders/2/settlement", env.staff, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Settlement struct {
			TotalPaid   string `json:"total_paid"`
			Outstanding string `json:"outstanding"`
			Status      string `json:"status"`
		} `json:"settlement"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "0.00", resp.Settlement.TotalPaid)
	assert.Equal(t, "250.00", resp.Settlement.Outstanding)
	assert.Equal(t, "AWAITING_PAYMENT", resp.Settlement.Status)
}

func TestGetOrderSettlementInvalidTotal(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/orders/3/settlement", env.staff, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetOrderSettlementNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/orders/999/settlement", env.staff, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/orders", "garbage-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsersRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/users", env.staff, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/users", env.admin, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"ana@example.com","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.Role)

	rec = env.request(t, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"ana@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePayment(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/orders/2/payments", env.staff,
		`{"amount":"100.00","payment_method_id":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The new payment shows up in the recomputed settlement.
	rec = env.request(t, http.MethodGet, "/api/v1/orders/2/settlement", env.staff, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Settlement struct {
			TotalPaid   string `json:"total_paid"`
			Outstanding string `json:"outstanding"`
		} `json:"settlement"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "100.00", resp.Settlement.TotalPaid)
	assert.Equal(t, "150.00", resp.Settlement.Outstanding)
}

func TestCreatePaymentRejectsBadAmount(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/orders/2/payments", env.staff,
		`{"amount":"-10.00","payment_method_id":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/orders/2/payments", env.staff,
		`{"amount":"abc","payment_method_id":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAllocateBarcode(t *testing.T) {
	env := newTestEnv(t)

	productRepo := repository.NewProductRepo(env.db)
	id, err := productRepo.Insert(&domain.Product{
		SKU: "COF-001", Name: "Espresso Beans", Category: "coffee",
		Price: "18.90", CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	rec := env.request(t, http.MethodPost, "/api/v1/products/1/barcode", env.staff, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ProductID int64  `json:"product_id"`
		Barcode   string `json:"barcode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.ProductID)
	assert.Equal(t, "2000000000015", resp.Barcode)

	// Second allocation for the same product conflicts.
	rec = env.request(t, http.MethodPost, "/api/v1/products/1/barcode", env.staff, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/dashboard", env.staff, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Orders struct {
			Total         int            `json:"total"`
			ByStatus      map[string]int `json:"by_status"`
			FullySettled  int            `json:"fully_settled"`
			InvalidTotals int            `json:"invalid_totals"`
		} `json:"orders"`
		Volume struct {
			TotalPaid        string `json:"total_paid"`
			TotalOutstanding string `json:"total_outstanding"`
		} `json:"volume"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 3, resp.Orders.Total)
	assert.Equal(t, 1, resp.Orders.InvalidTotals) // order 3 has a negative total
	assert.Equal(t, 1, resp.Orders.FullySettled)
	assert.Equal(t, 1, resp.Orders.ByStatus["SETTLED"])
	assert.Equal(t, "99.97", resp.Volume.TotalPaid)
	assert.Equal(t, "250.00", resp.Volume.TotalOutstanding)
}
