package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/audit"
	"github.com/lgramweb/lgram-web/internal/database"
	"github.com/lgramweb/lgram-web/internal/models"
	"github.com/lgramweb/lgram-web/internal/request"
	"github.com/lgramweb/lgram-web/internal/services/lgram"
	"github.com/lgramweb/lgram-web/internal/session"
	"github.com/lgramweb/lgram-web/internal/validation"
)

// MaxInputTextLength bounds the input text accepted for generation
const MaxInputTextLength = 5000

// GenerateHandler handles text generation requests
type GenerateHandler struct {
	engine   lgram.Generator
	sessions *session.Store
	audit    *audit.Log
	texts    database.GeneratedTextRepositoryInterface
	logger   *zap.Logger
}

// NewGenerateHandler creates a new generation handler
func NewGenerateHandler(engine lgram.Generator, sessions *session.Store, auditLog *audit.Log, texts database.GeneratedTextRepositoryInterface, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		engine:   engine,
		sessions: sessions,
		audit:    auditLog,
		texts:    texts,
		logger:   logger,
	}
}

// RegisterRoutes registers generation routes on the given router
func (h *GenerateHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.Generate).Methods("POST")
	r.HandleFunc("/correct", h.CorrectGrammar).Methods("POST")
}

// GenerateRequest represents a text generation request. NumSentences and
// Length override and persist the session's stored settings when present.
type GenerateRequest struct {
	InputText    string `json:"input_text" validate:"required,min=1,max=5000"`
	NumSentences *int   `json:"num_sentences,omitempty"`
	Length       *int   `json:"length,omitempty"`
}

// GenerateResponse represents a text generation response. History carries the
// caller's most recent generations including the one just produced.
type GenerateResponse struct {
	InputText     string                    `json:"input_text"`
	GeneratedText string                    `json:"generated_text"`
	Settings      models.GenerationSettings `json:"settings"`
	History       []*models.GeneratedText   `json:"history"`
}

// CorrectRequest represents a grammar correction request
type CorrectRequest struct {
	Text string `json:"text" validate:"required,min=1,max=5000"`
}

// Generate runs the engine over the submitted input and records the result
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.InputText = validation.SanitizeText(req.InputText)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", "input_text is required and must be at most 5000 characters")
		return
	}

	// A trailing period on the seed text is punctuation, not a word part.
	words := strings.Fields(strings.TrimSuffix(req.InputText, "."))
	if len(words) == 0 {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", "input_text must contain at least one word")
		return
	}

	ctx := r.Context()
	key := request.IdentityKeyFromContext(r)
	user := request.UserFromContext(r)

	settings := h.sessions.GenerationSettings(ctx, key)
	if req.NumSentences != nil || req.Length != nil {
		if req.NumSentences != nil {
			settings.NumSentences = *req.NumSentences
		}
		if req.Length != nil {
			settings.Length = *req.Length
		}
		settings.Clamp()
		if err := h.sessions.SetGenerationSettings(ctx, key, settings); err != nil {
			h.logger.Warn("settings_save_failed",
				zap.String("identity_key", key),
				zap.Error(err),
			)
		}
	}

	output, err := h.engine.GenerateText(ctx, words, settings.NumSentences, settings.Length)
	if err != nil {
		if recordErr := h.audit.RecordGenerationFailure(ctx, user, key, req.InputText, err,
			request.ClientIP(r), request.UserAgent(r)); recordErr != nil {
			h.logger.Error("generation_failure_record_failed", zap.Error(recordErr))
		}

		var genErr *lgram.GenerationError
		if errors.As(err, &genErr) {
			respondJSONError(w, http.StatusBadGateway, "Generation Failed", genErr.UserMessage())
			return
		}
		respondJSONError(w, http.StatusBadGateway, "Generation Failed", "The generation engine is unavailable")
		return
	}

	// Run the grammar pass over the raw generation; a correction failure
	// falls back to the uncorrected text rather than failing the request.
	if corrected, err := h.engine.CorrectGrammar(ctx, output); err != nil {
		h.logger.Warn("grammar_correction_failed", zap.Error(err))
	} else {
		output = corrected
	}

	if _, err := h.audit.RecordGeneration(ctx, user, key, req.InputText, output,
		request.ClientIP(r), request.UserAgent(r)); err != nil {
		h.logger.Error("generation_record_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to record generated text")
		return
	}

	if err := h.sessions.RecordActivity(ctx, key, models.ActionGenerateText,
		models.GenerationData(req.InputText, output)); err != nil {
		h.logger.Warn("session_activity_failed",
			zap.String("identity_key", key),
			zap.Error(err),
		)
	}

	var history []*models.GeneratedText
	if user != nil {
		history, err = h.texts.ListByUser(ctx, user.ID, DefaultHistoryLimit)
	} else {
		history, err = h.texts.ListBySessionKey(ctx, key, DefaultHistoryLimit)
	}
	if err != nil {
		h.logger.Warn("history_load_failed", zap.Error(err))
		history = nil
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		InputText:     req.InputText,
		GeneratedText: output,
		Settings:      settings,
		History:       history,
	})
}

// CorrectGrammar runs the engine's grammar pass over the submitted text
func (h *GenerateHandler) CorrectGrammar(w http.ResponseWriter, r *http.Request) {
	var req CorrectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Text = validation.SanitizeText(req.Text)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", "text is required and must be at most 5000 characters")
		return
	}

	corrected, err := h.engine.CorrectGrammar(r.Context(), req.Text)
	if err != nil {
		var genErr *lgram.GenerationError
		if errors.As(err, &genErr) {
			respondJSONError(w, http.StatusBadGateway, "Correction Failed", genErr.UserMessage())
			return
		}
		respondJSONError(w, http.StatusBadGateway, "Correction Failed", "The generation engine is unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"text":           req.Text,
		"corrected_text": corrected,
	})
}
