package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"parenthesized negative", "(1.234,56)", -1234.56},
		{"parenthesized with spaces", "( 2.500,00 )", -2500.0},
		{"plain punctuated", "1.234,56", 1234.56},
		{"decimal comma only", "100,5", 100.5},
		{"thousands only", "1.234", 1234},
		{"empty cell", "", 0},
		{"whitespace cell", "   ", 0},
		{"large value", "12.345.678,90", 12345678.90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.raw)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseValueMalformed(t *testing.T) {
	for _, raw := range []string{"abc", "12,34,56", "(not a number)"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseValue(raw)
			assert.Error(t, err)
		})
	}
}

func TestParseHinted(t *testing.T) {
	assert.InDelta(t, 1234.56, parseHinted("1.234,56"), 1e-9)
	assert.Zero(t, parseHinted("abc"))
	assert.Zero(t, parseHinted(""))
	// No parenthesis handling in hinted mode: the parens make it
	// unparseable and it coerces to zero.
	assert.Zero(t, parseHinted("(1.234,56)"))
}

func TestParseModeNames(t *testing.T) {
	mode, ok := ParseMode("punctuated")
	assert.True(t, ok)
	assert.Equal(t, ModePunctuated, mode)

	mode, ok = ParseMode("HINTED")
	assert.True(t, ok)
	assert.Equal(t, ModeHinted, mode)

	mode, ok = ParseMode("")
	assert.True(t, ok)
	assert.Equal(t, ModePunctuated, mode)

	_, ok = ParseMode("csv")
	assert.False(t, ok)

	assert.Equal(t, "punctuated", ModePunctuated.String())
	assert.Equal(t, "hinted", ModeHinted.String())
}
