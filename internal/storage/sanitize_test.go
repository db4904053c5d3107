package storage

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain filename passes through",
			input: "cat.png",
			want:  "cat.png",
		},
		{
			name:  "path components are stripped",
			input: "../../etc/passwd",
			want:  "passwd",
		},
		{
			name:  "windows separators are stripped",
			input: `C:\Users\me\dog.jpg`,
			want:  "dog.jpg",
		},
		{
			name:  "spaces become underscores",
			input: "my holiday photo.jpg",
			want:  "my_holiday_photo.jpg",
		},
		{
			name:  "unsafe characters become underscores",
			input: "a&b#c?.png",
			want:  "a_b_c_.png",
		},
		{
			name:  "leading dot is removed",
			input: ".hidden.png",
			want:  "hidden.png",
		},
		{
			name:  "leading underscore is kept",
			input: "__init.png",
			want:  "__init.png",
		},
		{
			name:  "dots and underscores only falls back",
			input: "._._",
			want:  FallbackName,
		},
		{
			name:  "surrounding whitespace is trimmed",
			input: "  framed.gif  ",
			want:  "framed.gif",
		},
		{
			name:  "empty input falls back",
			input: "",
			want:  FallbackName,
		},
		{
			name:  "dots only falls back",
			input: "...",
			want:  FallbackName,
		},
		{
			name:  "underscores only falls back",
			input: "___",
			want:  FallbackName,
		},
		{
			name:  "current directory falls back",
			input: ".",
			want:  FallbackName,
		},
		{
			name:  "emoji becomes underscores",
			input: "🎄.png",
			want:  "_.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{"cat.png", "my photo.jpg", "../../x.gif", "", ".hidden"}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestFileURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		filename string
		want     string
	}{
		{
			name:     "same origin path without base",
			base:     "",
			filename: "cat.png",
			want:     "/files/cat.png",
		},
		{
			name:     "absolute url with base",
			base:     "https://img.example.com",
			filename: "cat.png",
			want:     "https://img.example.com/files/cat.png",
		},
		{
			name:     "trailing slash on base is collapsed",
			base:     "https://img.example.com/",
			filename: "cat.png",
			want:     "https://img.example.com/files/cat.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileURL(tt.base, tt.filename); got != tt.want {
				t.Errorf("FileURL(%q, %q) = %q, want %q", tt.base, tt.filename, got, tt.want)
			}
		})
	}
}
