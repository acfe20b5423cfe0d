package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"

	"pharmasales/m/domain"
	"pharmasales/m/internal/metrics"
	"pharmasales/m/internal/sales"
)

type ctxKey string

const (
	ctxUserID ctxKey = "userID"
	ctxRole   ctxKey = "role"
)

// SaleService is the part of the sales orchestrator the HTTP layer drives.
type SaleService interface {
	CreateSale(ctx context.Context, req sales.CreateSaleRequest) (*domain.Sale, error)
	CancelSale(ctx context.Context, id int64) (*domain.Sale, error)
	GetSale(ctx context.Context, id int64) (*domain.Sale, error)
	ListAll(ctx context.Context) ([]domain.Sale, error)
	ListByPatient(ctx context.Context, rut string) ([]domain.Sale, error)
	ListByStatus(ctx context.Context, status domain.SaleStatus) ([]domain.Sale, error)
	ListToday(ctx context.Context) ([]domain.Sale, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]domain.Sale, error)
	Summary(ctx context.Context, day time.Time) (*sales.Summary, error)
}

// InventoryReader answers read-only inventory questions for the operator UI.
type InventoryReader interface {
	GetByID(ctx context.Context, id int64) (*domain.InventorySnapshot, error)
	GetByBatchAndWarehouse(ctx context.Context, batchID, warehouseID int64) (*domain.InventorySnapshot, error)
	GetAll(ctx context.Context) ([]domain.InventorySnapshot, error)
	GetByWarehouse(ctx context.Context, warehouseID int64) ([]domain.InventorySnapshot, error)
	GetProducts(ctx context.Context) ([]domain.ProductSnapshot, error)
	GetWarehouses(ctx context.Context) ([]domain.WarehouseSnapshot, error)
	CheckAvailability(ctx context.Context, id, quantity int64) bool
	IsAvailable(ctx context.Context) bool
}

// Prober reports whether an upstream service answers.
type Prober interface {
	IsAvailable(ctx context.Context) bool
}

// Deps bundles what the HTTP layer needs. Metrics and MetricsHandler may be
// nil.
type Deps struct {
	DB             *sqlx.DB
	Secret         string
	Sales          SaleService
	Inventory      InventoryReader
	Patients       Prober
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db             *sqlx.DB
	secret         string
	sales          SaleService
	inventory      InventoryReader
	patients       Prober
	metrics        *metrics.Metrics
	metricsHandler http.Handler
}

// New constructs a Handler.
func New(d Deps) *Handler {
	return &Handler{
		db:             d.DB,
		secret:         d.Secret,
		sales:          d.Sales,
		inventory:      d.Inventory,
		patients:       d.Patients,
		metrics:        d.Metrics,
		metricsHandler: d.MetricsHandler,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.metrics.Middleware)

	r.Get("/health", h.health)
	if h.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", h.metricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/api/sales", func(r chi.Router) {
			r.Post("/", h.createSale)
			r.Get("/", h.listSales)
			r.Get("/today", h.todaySales)
			r.Get("/summary", h.salesSummary)
			r.Get("/status/{status}", h.salesByStatus)
			r.Get("/range", h.salesInRange)
			r.Get("/patient/{rut}", h.salesByPatient)
			r.Get("/{id}", h.getSale)
			r.Put("/{id}/cancel", h.cancelSale)
		})

		pr.Route("/api/inventory-query", func(r chi.Router) {
			r.Get("/", h.listInventory)
			r.Get("/service-health", h.serviceHealth)
			r.Get("/products", h.availableProducts)
			r.Get("/warehouses", h.availableWarehouses)
			r.Get("/warehouse/{warehouseId}", h.inventoryByWarehouse)
			r.Get("/batch/{batchId}/warehouse/{warehouseId}", h.inventoryByBatch)
			r.Get("/{id}", h.inventoryByID)
			r.Get("/{id}/stock-check", h.stockCheck)
		})

		pr.Get("/api/benefits/types", h.benefitTypes)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
