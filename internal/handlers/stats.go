package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/request"
	"github.com/lgramweb/lgram-web/internal/stats"
)

// StatsHandler serves per-user and system-wide audit statistics
type StatsHandler struct {
	aggregator *stats.Aggregator
	logger     *zap.Logger
}

// NewStatsHandler creates a new statistics handler
func NewStatsHandler(aggregator *stats.Aggregator, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{aggregator: aggregator, logger: logger}
}

// RegisterRoutes registers statistics routes on the given router. Both routes
// require an authenticated account.
func (h *StatsHandler) RegisterRoutes(r *mux.Router, requireUser func(http.Handler) http.Handler) {
	r.Handle("/me", requireUser(http.HandlerFunc(h.MyStatistics))).Methods("GET")
	r.Handle("/summary", requireUser(http.HandlerFunc(h.Summary))).Methods("GET")
}

// MyStatistics returns the caller's audit statistics
func (h *StatsHandler) MyStatistics(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)

	result, err := h.aggregator.UserStatistics(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("user_statistics_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to compute statistics")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Summary returns the system-wide audit summary
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	result, err := h.aggregator.SystemSummary(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("system_summary_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to compute summary")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
