package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/export"
	"github.com/lgramweb/lgram-web/internal/request"
)

// ExportHandler serves full account data exports
type ExportHandler struct {
	exporter *export.Exporter
	logger   *zap.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exporter *export.Exporter, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exporter: exporter, logger: logger}
}

// RegisterRoutes registers export routes on the given router
func (h *ExportHandler) RegisterRoutes(r *mux.Router, requireUser func(http.Handler) http.Handler) {
	r.Handle("", requireUser(http.HandlerFunc(h.Export))).Methods("GET")
}

// Export returns the caller's complete data as one JSON document
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)

	doc, err := h.exporter.Build(r.Context(), user, 0)
	if err != nil {
		h.logger.Error("export_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to build export")
		return
	}

	respondJSON(w, http.StatusOK, doc)
}
