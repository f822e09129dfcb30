package validation

import (
	"testing"

	"github.com/lgramweb/lgram-web/internal/models"
)

func TestValidateActionKind(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"known login", "login", false},
		{"known generate_text", "generate_text", false},
		{"tagged other", "other:bulk_import", false},
		{"other prefix alone", "other:", true},
		{"unknown bare", "bulk_import", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateActionKind(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateActionKind(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestActionKindStructTag(t *testing.T) {
	t.Parallel()

	type payload struct {
		Type string `validate:"required,action_kind"`
	}

	if err := Validate.Struct(payload{Type: "view_history"}); err != nil {
		t.Errorf("valid kind rejected: %v", err)
	}
	if err := Validate.Struct(payload{Type: "not_a_kind"}); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text unchanged", "hello world", "hello world"},
		{"trims whitespace", "  hello  ", "hello"},
		{"strips control characters", "hel\x00lo\x07", "hello"},
		{"keeps newline and tab", "line1\n\tline2", "line1\n\tline2"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateGenerationSettings(t *testing.T) {
	t.Parallel()
	valid := models.GenerationSettings{NumSentences: 5, Length: 13, Temperature: 0.7, TopK: 50}

	tests := []struct {
		name    string
		mutate  func(*models.GenerationSettings)
		wantErr bool
	}{
		{"defaults pass", func(s *models.GenerationSettings) {}, false},
		{"num_sentences too low", func(s *models.GenerationSettings) { s.NumSentences = 0 }, true},
		{"num_sentences too high", func(s *models.GenerationSettings) { s.NumSentences = models.MaxNumSentences + 1 }, true},
		{"length too high", func(s *models.GenerationSettings) { s.Length = models.MaxLength + 1 }, true},
		{"temperature zero", func(s *models.GenerationSettings) { s.Temperature = 0 }, true},
		{"temperature above two", func(s *models.GenerationSettings) { s.Temperature = 2.5 }, true},
		{"temperature at two", func(s *models.GenerationSettings) { s.Temperature = 2 }, false},
		{"top_k zero", func(s *models.GenerationSettings) { s.TopK = 0 }, true},
		{"bounds inclusive", func(s *models.GenerationSettings) {
			s.NumSentences = models.MaxNumSentences
			s.Length = models.MinLength
			s.TopK = 1
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := valid
			tt.mutate(&s)
			err := ValidateGenerationSettings(s)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGenerationSettings(%+v) error = %v, wantErr %v", s, err, tt.wantErr)
			}
		})
	}
}
