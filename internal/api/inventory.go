package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pharmasales/m/internal/benefit"
)

func (h *Handler) inventoryByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	snap, err := h.inventory.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handler) inventoryByBatch(w http.ResponseWriter, r *http.Request) {
	batchID, ok := pathID(w, r, "batchId")
	if !ok {
		return
	}
	warehouseID, ok := pathID(w, r, "warehouseId")
	if !ok {
		return
	}
	snap, err := h.inventory.GetByBatchAndWarehouse(r.Context(), batchID, warehouseID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// List queries answer 503 on any upstream failure.

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.inventory.GetAll(r.Context())
	respondUpstreamList(w, snaps, err)
}

func (h *Handler) inventoryByWarehouse(w http.ResponseWriter, r *http.Request) {
	warehouseID, ok := pathID(w, r, "warehouseId")
	if !ok {
		return
	}
	snaps, err := h.inventory.GetByWarehouse(r.Context(), warehouseID)
	respondUpstreamList(w, snaps, err)
}

func (h *Handler) availableProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.inventory.GetProducts(r.Context())
	respondUpstreamList(w, products, err)
}

func (h *Handler) availableWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.inventory.GetWarehouses(r.Context())
	respondUpstreamList(w, warehouses, err)
}

func respondUpstreamList[T any](w http.ResponseWriter, items []T, err error) {
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if items == nil {
		items = []T{}
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) stockCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	quantity, err := strconv.ParseInt(r.URL.Query().Get("quantity"), 10, 64)
	if err != nil || quantity <= 0 {
		respondError(w, http.StatusBadRequest, "quantity must be greater than 0")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"inventoryId": id,
		"quantity":    quantity,
		"available":   h.inventory.CheckAvailability(r.Context(), id, quantity),
	})
}

func (h *Handler) serviceHealth(w http.ResponseWriter, r *http.Request) {
	inventoryUp := h.inventory.IsAvailable(r.Context())
	patientsUp := h.patients != nil && h.patients.IsAvailable(r.Context())

	status := http.StatusOK
	if !inventoryUp || !patientsUp {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]bool{
		"inventoryService": inventoryUp,
		"patientService":   patientsUp,
	})
}

func (h *Handler) benefitTypes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, benefit.Types())
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
