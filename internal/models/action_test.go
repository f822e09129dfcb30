package models

import "testing"

func TestActionKindValid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		kind ActionKind
		want bool
	}{
		{"known login", ActionLogin, true},
		{"known generate_text", ActionGenerateText, true},
		{"known page_view", ActionPageView, true},
		{"other with tag", OtherAction("bulk_import"), true},
		{"other prefix alone", ActionKind("other:"), false},
		{"unknown bare", ActionKind("bulk_import"), false},
		{"empty", ActionKind(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.kind.Valid(); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestActionKindTag(t *testing.T) {
	t.Parallel()

	if got := OtherAction("bulk_import").Tag(); got != "bulk_import" {
		t.Errorf("Tag() = %q, want bulk_import", got)
	}
	if got := ActionLogin.Tag(); got != "login" {
		t.Errorf("Tag() = %q, want login", got)
	}
	if ActionLogin.IsOther() {
		t.Error("IsOther() = true for known kind")
	}
	if !OtherAction("x").IsOther() {
		t.Error("IsOther() = false for other: kind")
	}
}

func TestGenerationData(t *testing.T) {
	t.Parallel()

	data := GenerationData("hello world", "abc")
	if got := data["input_length"]; got != 2 {
		t.Errorf("input_length = %v, want 2 (words, not characters)", got)
	}
	if got := data["output_length"]; got != 3 {
		t.Errorf("output_length = %v, want 3", got)
	}
	if got := data["input_preview"]; got != "hello world" {
		t.Errorf("input_preview = %v, want full input", got)
	}
	if got := data["output_preview"]; got != "abc" {
		t.Errorf("output_preview = %v, want abc", got)
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	short := "short text"
	if got := Preview(short); got != short {
		t.Errorf("Preview(%q) = %q, want unchanged", short, got)
	}

	long := make([]byte, PreviewLimit+50)
	for i := range long {
		long[i] = 'a'
	}
	got := Preview(string(long))
	if len(got) != PreviewLimit {
		t.Errorf("Preview length = %d, want %d", len(got), PreviewLimit)
	}
}
