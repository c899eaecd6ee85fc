package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Test Course!!", "test-course"},
		{"Go for Beginners", "go-for-beginners"},
		{"  Padded Title  ", "padded-title"},
		{"C++ & Rust (2026)", "c--rust-2026"},
		{"already-a-slug", "already-a-slug"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
