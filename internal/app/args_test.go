package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "   ", nil},
		{"plain", "星の海 1200", []string{"星の海", "1200"}},
		{"double quoted", `"星の 海" 1200`, []string{"星の 海", "1200"}},
		{"curly quoted", "“星の 海” 1200", []string{"星の 海", "1200"}},
		{"escaped quote", `"a \"b\" c" d`, []string{`a "b" c`, "d"}},
		{"mention and reason", "<@42> spamming links", []string{"<@42>", "spamming", "links"}},
		{"apostrophe", "Tom's_Story", []string{"Tom's_Story"}},
		{"shell metacharacters", "a;b c|d e>f", []string{"a;b", "c|d", "e>f"}},
		{"url with query", "https://www.youtube.com/watch?v=abc&t=42", []string{"https://www.youtube.com/watch?v=abc&t=42"}},
		{"quote inside word", `say"hi`, []string{`say"hi`}},
		{"empty quoted", `"" x`, []string{"", "x"}},
		{"full-width space", "星の海　500", []string{"星の海", "500"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitArgs(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitArgsErrors(t *testing.T) {
	_, err := splitArgs(`"unterminated`)
	assert.ErrorIs(t, err, errUnclosedQuote)

	_, err = splitArgs(`"a"b`)
	assert.ErrorIs(t, err, errQuoteNotSpaced)
}
