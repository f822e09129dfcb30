package models

import "testing"

func TestDefaultGenerationSettings(t *testing.T) {
	t.Parallel()

	def := DefaultGenerationSettings()
	if def.NumSentences != 5 || def.Length != 13 || def.Temperature != 0.7 || def.TopK != 50 {
		t.Errorf("DefaultGenerationSettings() = %+v, want {5 13 0.7 50}", def)
	}
}

func TestGenerationSettingsClamp(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   GenerationSettings
		want GenerationSettings
	}{
		{
			name: "in range unchanged",
			in:   GenerationSettings{NumSentences: 10, Length: 20, Temperature: 1.0, TopK: 40},
			want: GenerationSettings{NumSentences: 10, Length: 20, Temperature: 1.0, TopK: 40},
		},
		{
			name: "above max clamps to max",
			in:   GenerationSettings{NumSentences: 500, Length: 999, Temperature: 1.0, TopK: 40},
			want: GenerationSettings{NumSentences: MaxNumSentences, Length: MaxLength, Temperature: 1.0, TopK: 40},
		},
		{
			name: "non-positive falls back to defaults",
			in:   GenerationSettings{NumSentences: 0, Length: -1, Temperature: 0, TopK: 0},
			want: DefaultGenerationSettings(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.in
			got.Clamp()
			if got != tt.want {
				t.Errorf("Clamp(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
