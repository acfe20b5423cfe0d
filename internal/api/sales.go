package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pharmasales/m/domain"
	"pharmasales/m/internal/sales"
)

// statusFor maps orchestrator errors to HTTP status codes. Stock update
// failures are checked first because they wrap the gateway cause.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrStockUpdateFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPatientNotFound),
		errors.Is(err, domain.ErrInventoryNotFound),
		errors.Is(err, domain.ErrSaleNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrIncompleteInventoryData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, err.Error())
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req sales.CreateSaleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sale, err := h.sales.CreateSale(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sale)
}

func (h *Handler) cancelSale(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin, domain.RoleCashier) {
		return
	}
	id, ok := saleID(w, r)
	if !ok {
		return
	}
	sale, err := h.sales.CancelSale(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sale)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, ok := saleID(w, r)
	if !ok {
		return
	}
	sale, err := h.sales.GetSale(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sale)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	list, err := h.sales.ListAll(r.Context())
	respondList(w, list, err)
}

func (h *Handler) todaySales(w http.ResponseWriter, r *http.Request) {
	list, err := h.sales.ListToday(r.Context())
	respondList(w, list, err)
}

func (h *Handler) salesByPatient(w http.ResponseWriter, r *http.Request) {
	list, err := h.sales.ListByPatient(r.Context(), chi.URLParam(r, "rut"))
	respondList(w, list, err)
}

func (h *Handler) salesByStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := domain.ParseSaleStatus(chi.URLParam(r, "status"))
	if !ok {
		respondError(w, http.StatusBadRequest, "status must be PENDING, COMPLETED or CANCELLED")
		return
	}
	list, err := h.sales.ListByStatus(r.Context(), status)
	respondList(w, list, err)
}

func (h *Handler) salesInRange(w http.ResponseWriter, r *http.Request) {
	start, err := parseInstant(r.URL.Query().Get("start"), false)
	if err != nil {
		respondError(w, http.StatusBadRequest, "start must be YYYY-MM-DD or an ISO date-time")
		return
	}
	end, err := parseInstant(r.URL.Query().Get("end"), true)
	if err != nil {
		respondError(w, http.StatusBadRequest, "end must be YYYY-MM-DD or an ISO date-time")
		return
	}
	list, err := h.sales.ListBetween(r.Context(), start, end)
	respondList(w, list, err)
}

func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
			return
		}
		day = parsed
	}
	summary, err := h.sales.Summary(r.Context(), day)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func respondList(w http.ResponseWriter, list []domain.Sale, err error) {
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []domain.Sale{}
	}
	respondJSON(w, http.StatusOK, list)
}

func saleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return 0, false
	}
	return id, true
}

// parseInstant accepts a date-time or a bare date. A bare date is the start of
// that day, or its last instant when endOfDay is set.
func parseInstant(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, time.Local); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}
