package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/lgramweb/lgram-web/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("action_kind", validateActionKind); err != nil {
		panic(fmt.Sprintf("failed to register action_kind validator: %v", err))
	}
}

// validateActionKind validates that a string is one of the known action kinds
// or an "other:" tagged action
func validateActionKind(fl validator.FieldLevel) bool {
	return models.ActionKind(fl.Field().String()).Valid()
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateActionKind validates an action kind string value
func ValidateActionKind(value string) error {
	if models.ActionKind(value).Valid() {
		return nil
	}
	return fmt.Errorf("invalid action: %s (must be a known action or carry the %q prefix)", value, models.OtherActionPrefix)
}

// ValidateGenerationSettings checks the bounds of user-tunable generation
// parameters without mutating them. Handlers that want silent correction use
// models.GenerationSettings.Clamp instead.
func ValidateGenerationSettings(s models.GenerationSettings) error {
	if s.NumSentences < models.MinNumSentences || s.NumSentences > models.MaxNumSentences {
		return fmt.Errorf("num_sentences must be between %d and %d", models.MinNumSentences, models.MaxNumSentences)
	}
	if s.Length < models.MinLength || s.Length > models.MaxLength {
		return fmt.Errorf("length must be between %d and %d", models.MinLength, models.MaxLength)
	}
	if s.Temperature <= 0 || s.Temperature > 2 {
		return fmt.Errorf("temperature must be in (0, 2]")
	}
	if s.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1")
	}
	return nil
}
