package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LoginLog is a durable record of one authentication attempt. LogoutTime is
// stamped once by the logout path; every other field is immutable after create.
type LoginLog struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	LoginTime  time.Time  `json:"login_time"`
	LogoutTime *time.Time `json:"logout_time,omitempty"`
	IPAddress  string     `json:"ip_address"`
	UserAgent  string     `json:"user_agent"`
	SessionKey string     `json:"session_key"`
	Successful bool       `json:"successful"`
}

// Open reports whether the entry is a successful login with no logout stamped yet.
func (l *LoginLog) Open() bool {
	return l.Successful && l.LogoutTime == nil
}

// Duration returns the session duration, or zero if the login is still open.
func (l *LoginLog) Duration() time.Duration {
	if l.LogoutTime == nil {
		return 0
	}
	return l.LogoutTime.Sub(l.LoginTime)
}

// ActivityData is the structured-data bag carried by an activity log entry.
// Shapes are documented per action kind; generate_text entries always carry
// input_length, output_length, input_preview and output_preview.
type ActivityData map[string]any

// ActivityLog is an append-only record of one typed user action. UserID is nil
// for anonymous actors; such entries remain correlatable via SessionKey.
type ActivityLog struct {
	ID          uuid.UUID    `json:"id"`
	UserID      *uuid.UUID   `json:"user_id,omitempty"`
	SessionKey  string       `json:"session_key"`
	Action      ActionKind   `json:"action"`
	Description string       `json:"description"`
	IPAddress   string       `json:"ip_address"`
	UserAgent   string       `json:"user_agent"`
	Timestamp   time.Time    `json:"timestamp"`
	Data        ActivityData `json:"additional_data,omitempty"`
}

// GeneratedText is one unit of generation history: the input the visitor
// submitted and the text the engine produced for it.
type GeneratedText struct {
	ID         uuid.UUID  `json:"id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	SessionKey string     `json:"session_key"`
	InputText  string     `json:"input_text"`
	OutputText string     `json:"generated_text"`
	IPAddress  string     `json:"ip_address"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PreviewLimit bounds text previews embedded in activity metadata so audit
// records stay compact.
const PreviewLimit = 100

// Preview truncates s to at most PreviewLimit characters.
func Preview(s string) string {
	if len(s) <= PreviewLimit {
		return s
	}
	return s[:PreviewLimit]
}

// GenerationData builds the activity metadata for a generate_text entry.
// input_length counts the words submitted to the engine; output_length counts
// the characters of the generated text.
func GenerationData(input, output string) ActivityData {
	return ActivityData{
		"input_length":   len(strings.Fields(input)),
		"output_length":  len(output),
		"input_preview":  Preview(input),
		"output_preview": Preview(output),
	}
}
