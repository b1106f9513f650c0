package handlers

import (
	"net/http"
	"strconv"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/internal/report"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// ReportHandler serves decision reports. Refreshes are user-triggered;
// GET endpoints only read the last assembled report.
type ReportHandler struct {
	refresher *report.Refresher
	hub       *Hub
	logger    *logger.Logger
}

// NewReportHandler creates a new report handler. hub may be nil when
// push is disabled.
func NewReportHandler(refresher *report.Refresher, hub *Hub, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		refresher: refresher,
		hub:       hub,
		logger:    log,
	}
}

// Get returns the last assembled report.
// GET /api/report
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	last := h.refresher.Last()
	if last == nil {
		respondError(w, http.StatusNotFound, "No report yet, trigger a refresh first")
		return
	}

	respondJSON(w, http.StatusOK, last)
}

// Summary returns the decision summary of the last report.
// GET /api/summary
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	last := h.refresher.Last()
	if last == nil {
		respondError(w, http.StatusNotFound, "No report yet, trigger a refresh first")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"generated_at":  last.GeneratedAt,
		"instrument":    last.Instrument,
		"status":        last.Status,
		"status_reason": last.StatusReason,
		"summary":       last.Summary,
		"passed_weeks":  last.PassedCount(),
	})
}

// Refresh fetches fresh market data and assembles a new report. The
// optional cost basis rides in as query parameters.
// POST /api/report/refresh?cost=1.234&qty=1000
func (h *ReportHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	basis, err := parseBasis(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.refresher.Refresh(r.Context(), basis)

	if h.hub != nil {
		h.hub.Broadcast(result)
	}

	respondJSON(w, http.StatusOK, result)
}

// parseBasis reads the optional cost/qty query parameters. Both absent
// means no position; partial or negative input is a client error.
func parseBasis(r *http.Request) (contracts.CostBasis, error) {
	var basis contracts.CostBasis

	if raw := r.URL.Query().Get("cost"); raw != "" {
		cost, err := strconv.ParseFloat(raw, 64)
		if err != nil || cost < 0 {
			return contracts.CostBasis{}, &basisError{"cost must be a non-negative number"}
		}
		basis.UnitCost = cost
	}

	if raw := r.URL.Query().Get("qty"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil || qty < 0 {
			return contracts.CostBasis{}, &basisError{"qty must be a non-negative integer"}
		}
		basis.Quantity = qty
	}

	return basis, nil
}

type basisError struct {
	msg string
}

func (e *basisError) Error() string {
	return e.msg
}
