package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already clean",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "surrounding whitespace",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "internal runs collapse",
			input: "hello   \t world",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: " \t\n ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrimAndNormalizeIdempotent(t *testing.T) {
	inputs := []string{"  a  b  ", "clean", "", "x\t\ty"}
	for _, in := range inputs {
		once := TrimAndNormalize(in)
		twice := TrimAndNormalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeToken(t *testing.T) {
	got := NormalizeToken("\n  eyJhbGciOi  ")
	if got != "eyJhbGciOi" {
		t.Errorf("NormalizeToken = %q", got)
	}
}
