package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/inventory-core/internal/domain/item"
	"github.com/example/inventory-core/internal/domain/reservation"
	"github.com/example/inventory-core/internal/domain/transaction"
)

type Handlers struct {
	items    *item.Service
	engine   *reservation.Engine
	recorder *transaction.Recorder
}

func NewHandlers(items *item.Service, engine *reservation.Engine, recorder *transaction.Recorder) *Handlers {
	return &Handlers{
		items:    items,
		engine:   engine,
		recorder: recorder,
	}
}

// Inventory item handlers

func (h *Handlers) CreateItem(w http.ResponseWriter, r *http.Request) {
	var cmd item.CreateItem
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	it, err := h.items.Create(r.Context(), cmd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, it)
}

func (h *Handlers) GetItems(w http.ResponseWriter, r *http.Request) {
	if productID := r.URL.Query().Get("product"); productID != "" {
		items, err := h.items.ListByProduct(r.Context(), productID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, items)
		return
	}

	items, err := h.items.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handlers) GetItem(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/items/")
	it, err := h.items.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

func (h *Handlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/items/")

	var cmd item.UpdateItem
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	it, err := h.items.Update(r.Context(), id, cmd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

func (h *Handlers) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/items/")
	if err := h.items.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Item deleted"})
}

// AdjustItem changes the on-hand quantity and records the matching
// ADJUSTMENT ledger entry.
func (h *Handlers) AdjustItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/items/"), "/adjust")

	var req struct {
		Delta int    `json:"delta"`
		Notes string `json:"notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	it, err := h.items.AdjustQuantity(r.Context(), id, req.Delta)
	if err != nil {
		respondError(w, err)
		return
	}

	if _, err := h.recorder.Create(r.Context(), transaction.RecordMovement{
		InventoryItemID: id,
		Quantity:        req.Delta,
		Type:            transaction.TypeAdjustment,
		Notes:           req.Notes,
	}); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, it)
}

// Warehouse handlers

func (h *Handlers) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Location string `json:"location,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wh, err := h.items.CreateWarehouse(r.Context(), req.Name, req.Location)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, wh)
}

func (h *Handlers) DeactivateWarehouse(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/warehouses/"), "/deactivate")
	if err := h.items.DeactivateWarehouse(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Warehouse deactivated"})
}

// Reservation handlers

func (h *Handlers) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var cmd reservation.CreateReservation
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.engine.Create(r.Context(), cmd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h *Handlers) GetReservation(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/reservations/")
	res, err := h.engine.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handlers) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/reservations/")

	var cmd reservation.UpdateReservation
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.engine.Update(r.Context(), id, cmd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handlers) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/reservations/")
	if err := h.engine.Remove(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Reservation deleted"})
}

func (h *Handlers) FulfillReservation(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/reservations/"), "/fulfill")

	var req struct {
		Notes string `json:"notes,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	res, it, err := h.engine.Fulfill(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	if _, err := h.recorder.Create(r.Context(), transaction.RecordMovement{
		InventoryItemID: it.ID,
		Quantity:        -res.Quantity,
		Type:            transaction.TypeSale,
		ReferenceID:     res.OrderID,
		ReferenceType:   "ORDER",
		Notes:           req.Notes,
	}); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

func (h *Handlers) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/reservations/"), "/cancel")

	var req struct {
		Reason string `json:"reason,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Reason == "" {
		req.Reason = "Cancelled by operator"
	}

	res, err := h.engine.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handlers) ProcessExpired(w http.ResponseWriter, r *http.Request) {
	count, err := h.engine.ProcessExpired(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"cancelled": count})
}

// Transaction handlers

func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var cmd transaction.RecordMovement
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t, err := h.recorder.Create(r.Context(), cmd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (h *Handlers) GetTransactions(w http.ResponseWriter, r *http.Request) {
	itemID := r.URL.Query().Get("item")
	if itemID == "" {
		http.Error(w, "item query parameter is required", http.StatusBadRequest)
		return
	}

	transactions, err := h.recorder.ListByItem(r.Context(), itemID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

func (h *Handlers) GetTransactionSummary(w http.ResponseWriter, r *http.Request) {
	itemID := r.URL.Query().Get("item")
	if itemID == "" {
		http.Error(w, "item query parameter is required", http.StatusBadRequest)
		return
	}

	summary, err := h.recorder.Summarize(r.Context(), itemID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), errStatus(err))
}

// errStatus maps domain sentinel errors to HTTP status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, item.ErrNotFound),
		errors.Is(err, item.ErrWarehouseNotFound),
		errors.Is(err, reservation.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, item.ErrInsufficientStock),
		errors.Is(err, item.ErrWarehouseInactive),
		errors.Is(err, reservation.ErrInsufficientAvailableStock),
		errors.Is(err, reservation.ErrInvalidState),
		errors.Is(err, reservation.ErrExpired):
		return http.StatusConflict
	case errors.Is(err, item.ErrInvalidQuantity),
		errors.Is(err, reservation.ErrInvalidQuantity),
		errors.Is(err, transaction.ErrInvalidType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func extractPathParam(path, prefix string) string {
	param := strings.TrimPrefix(path, prefix)
	return strings.TrimSuffix(param, "/")
}
