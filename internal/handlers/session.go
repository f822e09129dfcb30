package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/models"
	"github.com/lgramweb/lgram-web/internal/request"
	"github.com/lgramweb/lgram-web/internal/session"
	"github.com/lgramweb/lgram-web/internal/validation"
)

// MaxExtendDuration bounds a single session extension request
const MaxExtendDuration = 24 * time.Hour

// SessionHandler serves session state: settings, preferences and the bounded
// recent-activity buffer.
type SessionHandler struct {
	sessions *session.Store
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Store, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers session routes on the given router
func (h *SessionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.SessionInfo).Methods("GET")
	r.HandleFunc("/settings", h.GetSettings).Methods("GET")
	r.HandleFunc("/settings", h.UpdateSettings).Methods("PUT")
	r.HandleFunc("/preferences/{key}", h.GetPreference).Methods("GET")
	r.HandleFunc("/preferences/{key}", h.SetPreference).Methods("PUT")
	r.HandleFunc("/activities", h.RecentActivities).Methods("GET")
	r.HandleFunc("/extend", h.Extend).Methods("POST")
}

// SessionInfo summarizes the caller's session
func (h *SessionHandler) SessionInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := request.IdentityKeyFromContext(r)
	user := request.UserFromContext(r)

	info := models.SessionInfo{
		SessionKey:       key,
		IsAuthenticated:  user != nil,
		ExpiresAt:        h.sessions.ExpiresAt(ctx, key),
		RecentActivities: len(h.sessions.RecentActivities(ctx, key, "")),
		PreferenceKeys:   h.sessions.PreferenceKeys(ctx, key),
	}
	if user != nil {
		id := user.ID.String()
		info.UserID = &id
		info.Username = &user.Username
	}

	respondJSON(w, http.StatusOK, info)
}

// GetSettings returns the stored generation settings, defaults if none
func (h *SessionHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	key := request.IdentityKeyFromContext(r)
	respondJSON(w, http.StatusOK, h.sessions.GenerationSettings(r.Context(), key))
}

// UpdateSettings replaces the stored generation settings
func (h *SessionHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.GenerationSettings
	if err := decodeJSON(r, &settings); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.ValidateGenerationSettings(settings); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	key := request.IdentityKeyFromContext(r)
	if err := h.sessions.SetGenerationSettings(r.Context(), key, settings); err != nil {
		h.logger.Error("settings_save_failed",
			zap.String("identity_key", key),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save settings")
		return
	}

	respondJSON(w, http.StatusOK, settings)
}

// GetPreference returns one stored preference value
func (h *SessionHandler) GetPreference(w http.ResponseWriter, r *http.Request) {
	prefKey := mux.Vars(r)["key"]
	key := request.IdentityKeyFromContext(r)

	value := h.sessions.Preference(r.Context(), key, prefKey, nil)
	if value == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Preference not set")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"key": prefKey, "value": value})
}

// SetPreferenceRequest represents a preference write
type SetPreferenceRequest struct {
	Value any `json:"value"`
}

// SetPreference stores one preference value. Last write wins.
func (h *SessionHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	var req SetPreferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	prefKey := mux.Vars(r)["key"]
	key := request.IdentityKeyFromContext(r)

	if err := h.sessions.SetPreference(r.Context(), key, prefKey, req.Value); err != nil {
		h.logger.Error("preference_save_failed",
			zap.String("identity_key", key),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save preference")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"key": prefKey, "value": req.Value})
}

// RecentActivities returns the session's activity buffer in chronological
// order, optionally filtered by ?type=
func (h *SessionHandler) RecentActivities(w http.ResponseWriter, r *http.Request) {
	key := request.IdentityKeyFromContext(r)

	kind := models.ActionKind(r.URL.Query().Get("type"))
	if kind != "" && !kind.Valid() {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", "Unknown activity type")
		return
	}

	activities := h.sessions.RecentActivities(r.Context(), key, kind)
	respondJSON(w, http.StatusOK, map[string]any{
		"activities": activities,
		"count":      len(activities),
	})
}

// ExtendRequest represents a session extension request
type ExtendRequest struct {
	Duration string `json:"duration" validate:"required"`
}

// Extend adds time to the session's remaining lifetime
func (h *SessionHandler) Extend(w http.ResponseWriter, r *http.Request) {
	var req ExtendRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	delta, err := time.ParseDuration(req.Duration)
	if err != nil || delta <= 0 || delta > MaxExtendDuration {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", "duration must be a positive duration up to 24h")
		return
	}

	ctx := r.Context()
	key := request.IdentityKeyFromContext(r)
	if err := h.sessions.ExtendExpiry(ctx, key, delta); err != nil {
		h.logger.Error("session_extend_failed",
			zap.String("identity_key", key),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to extend session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session_expires": h.sessions.ExpiresAt(ctx, key),
	})
}
