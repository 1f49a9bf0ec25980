package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"control characters and blank lines", "a\x00b\n\n  c  \n", "ab\nc"},
		{"crlf", "one\r\ntwo\rthree", "one\ntwo\nthree"},
		{"tabs kept inside lines", "\tcol1\tcol2\t", "col1\tcol2"},
		{"whitespace only", " \n\t\n ", ""},
		{"delete character", "x\x7fy", "xy"},
		{"unicode untouched", "  Grüße  \n日本語", "Grüße\n日本語"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
		})
	}
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "", SanitizeText(""))
	assert.Equal(t, "a\nb\nc", SanitizeText("  a\x00\r\nb\rc \n"))
}
