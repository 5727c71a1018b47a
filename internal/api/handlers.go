package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lumapos/backoffice/internal/auth"
	"github.com/lumapos/backoffice/internal/barcode"
	"github.com/lumapos/backoffice/internal/domain"
	"github.com/lumapos/backoffice/internal/importer"
	"github.com/lumapos/backoffice/internal/repository"
	"github.com/lumapos/backoffice/internal/settlement"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	orderRepo     *repository.OrderRepo
	paymentRepo   *repository.PaymentRepo
	productRepo   *repository.ProductRepo
	userRepo      *repository.UserRepo
	importSvc     *importer.Service
	jwtSecret     []byte
	passwordSalt  string
	barcodePrefix string
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil
		}
	}
	return &t
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// --- Login ---

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, h.passwordSalt, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	now := time.Now()
	token, err := auth.IssueToken(h.jwtSecret, user, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issue token: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"role":       user.Role,
		"expires_at": now.Add(auth.TokenTTL).Format(time.RFC3339),
	})
}

// --- ListOrders ---

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.OrderFilter{
		StatusID: parseIntDefault(q.Get("status_id"), 0),
		From:     parseTime(q.Get("from")),
		To:       parseTime(q.Get("to")),
		Page:     parseIntDefault(q.Get("page"), 1),
		Limit:    parseIntDefault(q.Get("limit"), 50),
	}

	orders, total, err := h.orderRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"total":  total,
		"page":   filter.Page,
		"limit":  filter.Limit,
	})
}

// --- GetOrder ---

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orderRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	payments, err := h.paymentRepo.ListByOrder(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"order":    order,
		"payments": payments,
	})
}

// --- GetOrderSettlement ---

// GetOrderSettlement derives the settlement summary for one order. The
// summary is computed fresh on every call and never stored.
func (h *Handlers) GetOrderSettlement(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orderRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	payments, err := h.paymentRepo.ListByOrder(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s, err := settlement.Compute(*order, payments)
	if err != nil {
		if errors.Is(err, settlement.ErrInvalidOrderData) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"order_id":   order.ID,
		"settlement": s,
	})
}

// --- CreatePayment ---

func (h *Handlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if _, err := h.orderRepo.GetByID(id); err != nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	var req struct {
		Amount          domain.Amount `json:"amount"`
		PaymentMethodID int           `json:"payment_method_id"`
		PaymentDate     string        `json:"payment_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// New payments are validated up front; tolerance for malformed records
	// applies only to historical upstream data.
	amt, err := req.Amount.Decimal()
	if err != nil || amt.IsNegative() {
		writeError(w, http.StatusBadRequest, "amount must be a non-negative decimal")
		return
	}

	paymentDate := time.Now().UTC()
	if t := parseTime(req.PaymentDate); t != nil {
		paymentDate = *t
	}

	p := domain.Payment{
		OrderID:         id,
		Amount:          req.Amount,
		PaymentMethodID: req.PaymentMethodID,
		PaymentDate:     paymentDate,
	}
	pid, err := h.paymentRepo.Insert(&p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	p.ID = pid

	writeJSON(w, http.StatusCreated, p)
}

// --- ListProducts ---

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     parseIntDefault(q.Get("page"), 1),
		Limit:    parseIntDefault(q.Get("limit"), 50),
	}

	products, total, err := h.productRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

// --- ImportProducts ---

func (h *Handlers) ImportProducts(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return
	}

	result, err := h.importSvc.ImportProducts(data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// --- AllocateBarcode ---

func (h *Handlers) AllocateBarcode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.productRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if product.Barcode != "" {
		writeError(w, http.StatusConflict, "product already has barcode "+product.Barcode)
		return
	}

	seq, err := h.productRepo.NextBarcodeSequence(h.barcodePrefix)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	code, err := barcode.Make(h.barcodePrefix, seq)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.productRepo.AssignBarcode(id, code); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"product_id": id,
		"barcode":    code,
	})
}

// --- ListUsers ---

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"total": len(users),
	})
}

// --- GetDashboard ---

// GetDashboard rolls up settlement summaries across all orders. Each order
// is computed independently through the pure calculator; orders with
// invalid declared totals are counted instead of silently defaulted.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderRepo.ListAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	paymentsByOrder, err := h.paymentRepo.ListAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	byStatus := map[domain.OrderStatus]int{}
	totalPaid := decimal.Zero
	totalOutstanding := decimal.Zero
	fullySettled := 0
	invalidOrders := 0
	warningCount := 0

	for _, o := range orders {
		s, err := settlement.Compute(o, paymentsByOrder[o.ID])
		if err != nil {
			invalidOrders++
			continue
		}
		byStatus[s.Status]++
		totalPaid = totalPaid.Add(s.TotalPaid.Decimal)
		totalOutstanding = totalOutstanding.Add(s.Outstanding.Decimal)
		if s.Outstanding.IsZero() {
			fullySettled++
		}
		warningCount += len(s.Warnings)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orders": map[string]any{
			"total":          len(orders),
			"by_status":      byStatus,
			"fully_settled":  fullySettled,
			"invalid_totals": invalidOrders,
		},
		"volume": map[string]any{
			"total_paid":        totalPaid.StringFixed(2),
			"total_outstanding": totalOutstanding.StringFixed(2),
		},
		"payment_warnings": warningCount,
	})
}
