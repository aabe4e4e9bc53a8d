package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/eugenenazirov/bundle-optimizer/internal/bundle"
	"github.com/eugenenazirov/bundle-optimizer/internal/catalog"
	"github.com/eugenenazirov/bundle-optimizer/internal/knapsack"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const maxBodyBytes = 1 << 20

// Planner runs one optimization for an immutable request.
type Planner interface {
	Plan(ctx context.Context, req bundle.Request) (bundle.Report, error)
}

// Handler wires the item catalog and the planner into HTTP handlers.
type Handler struct {
	catalog catalog.Catalog
	planner Planner

	clock func() time.Time

	mu                sync.RWMutex
	capacityUpdatedAt time.Time
	lastRun           *lastRunResponse
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store catalog.Catalog, planner Planner, opts ...HandlerOption) *Handler {
	h := &Handler{
		catalog: store,
		planner: planner,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.capacityUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	_ = r
	snap := h.catalog.Snapshot()
	writeJSON(w, http.StatusOK, itemsResponse{
		Items:      snap.Entries,
		Capacity:   snap.Capacity,
		TotalItems: len(snap.Entries),
	})
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	entry, err := h.catalog.Add(req.Name, req.Cost, req.Profit)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidItem) {
			writeError(w, http.StatusBadRequest, "Invalid item", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.catalog.Remove(id); err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "Item not found", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClearItems(w http.ResponseWriter, r *http.Request) {
	_ = r
	h.mu.Lock()
	h.catalog.Clear()
	h.lastRun = nil
	h.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetCapacity(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, capacityResponse{
		Capacity:  h.catalog.Capacity(),
		UpdatedAt: h.currentCapacityUpdatedAt(),
	})
}

func (h *Handler) handlePutCapacity(w http.ResponseWriter, r *http.Request) {
	var req capacityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if err := h.catalog.SetCapacity(req.Capacity); err != nil {
		if errors.Is(err, catalog.ErrInvalidCapacity) {
			writeError(w, http.StatusBadRequest, "Invalid capacity", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markCapacityUpdated()

	writeJSON(w, http.StatusOK, capacityResponse{
		Capacity:  h.catalog.Capacity(),
		UpdatedAt: h.currentCapacityUpdatedAt(),
		Message:   "Capacity updated successfully",
	})
}

func (h *Handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	snap := h.catalog.Snapshot()
	fromWorkspace := req.Items == nil

	planReq := bundle.Request{Capacity: snap.Capacity}
	if fromWorkspace {
		planReq.Items = snap.Items()
	} else {
		planReq.Items = make([]knapsack.Item, len(*req.Items))
		for i, it := range *req.Items {
			planReq.Items[i] = knapsack.Item{Name: it.Name, Cost: it.Cost, Profit: it.Profit}
		}
	}
	if req.Capacity != nil {
		planReq.Capacity = *req.Capacity
	}

	report, err := h.planner.Plan(r.Context(), planReq)
	if err != nil {
		writePlanError(w, err)
		return
	}

	if fromWorkspace {
		h.recordLastRun(snap.Generation, report)
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleLastResult(w http.ResponseWriter, r *http.Request) {
	_ = r
	h.mu.RLock()
	last := h.lastRun
	h.mu.RUnlock()

	if last == nil {
		writeError(w, http.StatusNotFound, "No result", "run the optimization first")
		return
	}
	writeJSON(w, http.StatusOK, last)
}

func writePlanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bundle.ErrNoItems):
		writeError(w, http.StatusUnprocessableEntity, "No items", err.Error(), "Add products with POST /api/items or pass them inline")
	case errors.Is(err, knapsack.ErrTableTooLarge):
		writeError(w, http.StatusUnprocessableEntity, "Problem too large", err.Error(), "Lower the capacity or enable the rolling memory mode")
	case errors.Is(err, bundle.ErrInvalidCapacity),
		errors.Is(err, bundle.ErrCapacityTooLarge),
		errors.Is(err, bundle.ErrTooManyItems),
		errors.Is(err, knapsack.ErrInvalidItem),
		errors.Is(err, knapsack.ErrNegativeCapacity):
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Request cancelled", err.Error())
	default:
		writeInternalError(w, err)
	}
}

// recordLastRun stores report unless the workspace was cleared after the
// snapshot of generation was taken.
func (h *Handler) recordLastRun(generation uint64, report bundle.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.catalog.Generation() != generation {
		return
	}
	h.lastRun = &lastRunResponse{Report: report, Summary: report.Summary(summaryLanguage), RanAt: h.clock()}
}

func (h *Handler) currentCapacityUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.capacityUpdatedAt
}

func (h *Handler) markCapacityUpdated() {
	h.mu.Lock()
	h.capacityUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(body).Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
