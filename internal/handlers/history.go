package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/audit"
	"github.com/lgramweb/lgram-web/internal/database"
	"github.com/lgramweb/lgram-web/internal/models"
	"github.com/lgramweb/lgram-web/internal/request"
)

const (
	// DefaultHistoryLimit is the number of entries returned without ?limit
	DefaultHistoryLimit = 10
	// MaxHistoryLimit is the largest page the history endpoint serves
	MaxHistoryLimit = 100
)

// HistoryHandler serves and clears generation history. Authenticated requests
// see account-wide history; anonymous requests see only their session's.
type HistoryHandler struct {
	texts  database.GeneratedTextRepositoryInterface
	audit  *audit.Log
	logger *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(texts database.GeneratedTextRepositoryInterface, auditLog *audit.Log, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{texts: texts, audit: auditLog, logger: logger}
}

// RegisterRoutes registers history routes on the given router
func (h *HistoryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListHistory).Methods("GET")
	r.HandleFunc("", h.ClearHistory).Methods("DELETE")
}

// ListHistory returns recent generation history, newest first
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := request.UserFromContext(r)
	key := request.IdentityKeyFromContext(r)

	limit := DefaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
			if limit > MaxHistoryLimit {
				limit = MaxHistoryLimit
			}
		}
	}

	var (
		texts []*models.GeneratedText
		err   error
	)
	if user != nil {
		texts, err = h.texts.ListByUser(ctx, user.ID, limit)
	} else {
		texts, err = h.texts.ListBySessionKey(ctx, key, limit)
	}
	if err != nil {
		h.logger.Error("history_list_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load history")
		return
	}

	if _, err := h.audit.RecordActivity(ctx, user, key, models.ActionViewHistory,
		"Viewed generation history", request.ClientIP(r), request.UserAgent(r),
		models.ActivityData{"count": len(texts)}); err != nil {
		h.logger.Warn("history_activity_failed", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"history": texts,
		"count":   len(texts),
	})
}

// ClearHistory deletes the caller's generation history
func (h *HistoryHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := request.UserFromContext(r)
	key := request.IdentityKeyFromContext(r)

	var (
		deleted int
		err     error
	)
	if user != nil {
		deleted, err = h.texts.DeleteByUser(ctx, user.ID)
	} else {
		deleted, err = h.texts.DeleteBySessionKey(ctx, key)
	}
	if err != nil {
		h.logger.Error("history_clear_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to clear history")
		return
	}

	if _, err := h.audit.RecordActivity(ctx, user, key, models.ActionClearHistory,
		"Cleared generation history", request.ClientIP(r), request.UserAgent(r),
		models.ActivityData{"deleted": deleted}); err != nil {
		h.logger.Warn("history_activity_failed", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
