package util

import "testing"

func TestNormalizeForIndex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain ascii",
			input: "Les Livres",
			want:  "les livres",
		},
		{
			name:  "diacritics stripped",
			input: "Les Misérables",
			want:  "les miserables",
		},
		{
			name:  "surrounding whitespace",
			input: "  Über die Bühne  ",
			want:  "uber die buhne",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only marks and spaces",
			input: " ́ ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeForIndex(tt.input)
			if got != tt.want {
				t.Fatalf("NormalizeForIndex(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeForIndexIdempotent(t *testing.T) {
	inputs := []string{"Les Misérables", "Œuvres complètes", "ARK:/12148/cb123", "  mixed  Case  "}
	for _, input := range inputs {
		once := NormalizeForIndex(input)
		twice := NormalizeForIndex(once)
		if once != twice {
			t.Fatalf("NormalizeForIndex not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestEncodeForNodeIDInjective(t *testing.T) {
	inputs := []string{
		"simple",
		"with space",
		"with%20literal",
		"with/slash",
		"with?query",
		"with#hash",
		"accénted",
	}

	seen := make(map[string]string)
	for _, input := range inputs {
		encoded := EncodeForNodeID(input)
		if prev, ok := seen[encoded]; ok {
			t.Fatalf("EncodeForNodeID collision: %q and %q both encode to %q", prev, input, encoded)
		}
		seen[encoded] = input
	}
}

func TestNormalizeExternalID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "ARK:/12148/CB443661158", "ark:/12148/cb443661158"},
		{"trims", "  ark:/12148/cb1  ", "ark:/12148/cb1"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeExternalID(tt.input)
			if got != tt.want {
				t.Fatalf("NormalizeExternalID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
