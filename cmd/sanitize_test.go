package cmd

import "testing"

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name unchanged", "Men's Shoes > Running", "Men's Shoes > Running"},
		{"accented text unchanged", "Calçados", "Calçados"},
		{"ANSI escape replaced leaving rest intact", "Shoes\x1b[2J", "Shoes?[2J"},
		{"newline replaced", "two\nlines", "two?lines"},
		{"DEL replaced", "x\x7fy", "x?y"},
		{"empty string unchanged", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeText(tt.input); got != tt.want {
				t.Errorf("sanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
