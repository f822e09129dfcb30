package models

import "time"

// Generation settings bounds. Values outside these ranges are clamped at the
// boundary rather than rejected.
const (
	MinNumSentences = 1
	MaxNumSentences = 50
	MinLength       = 1
	MaxLength       = 100
)

// GenerationSettings holds per-session text generation parameters.
// Temperature and TopK are stored for future use by the engine.
type GenerationSettings struct {
	NumSentences int     `json:"num_sentences"`
	Length       int     `json:"length"`
	Temperature  float64 `json:"temperature"`
	TopK         int     `json:"top_k"`
}

// DefaultGenerationSettings returns the fixed default settings used whenever
// a session has none stored.
func DefaultGenerationSettings() GenerationSettings {
	return GenerationSettings{
		NumSentences: 5,
		Length:       13,
		Temperature:  0.7,
		TopK:         50,
	}
}

// Clamp forces every numeric field into its valid range, falling back to the
// defaults for non-positive values.
func (s *GenerationSettings) Clamp() {
	def := DefaultGenerationSettings()
	if s.NumSentences < MinNumSentences {
		s.NumSentences = def.NumSentences
	}
	if s.NumSentences > MaxNumSentences {
		s.NumSentences = MaxNumSentences
	}
	if s.Length < MinLength {
		s.Length = def.Length
	}
	if s.Length > MaxLength {
		s.Length = MaxLength
	}
	if s.Temperature <= 0 {
		s.Temperature = def.Temperature
	}
	if s.TopK <= 0 {
		s.TopK = def.TopK
	}
}

// SessionActivity is one entry of the bounded recent-activity buffer kept
// inside a session document.
type SessionActivity struct {
	Type      ActionKind     `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SessionInfo summarizes one session for diagnostics and the session endpoint.
type SessionInfo struct {
	SessionKey       string    `json:"session_key"`
	IsAuthenticated  bool      `json:"is_authenticated"`
	UserID           *string   `json:"user_id,omitempty"`
	Username         *string   `json:"username,omitempty"`
	ExpiresAt        time.Time `json:"session_expires"`
	RecentActivities int       `json:"recent_activities_count"`
	PreferenceKeys   []string  `json:"stored_preferences"`
}
