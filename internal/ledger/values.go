package ledger

import (
	"strconv"
	"strings"
)

// Mode selects how numeric cells are interpreted during normalization.
type Mode int

const (
	// ModePunctuated parses every cell through ParseValue: thousands dots,
	// decimal commas and accounting-style parenthesized negatives.
	ModePunctuated Mode = iota
	// ModeHinted applies the reader-level decimal/thousands convention
	// only. No parenthesis handling; unparseable cells coerce to zero.
	ModeHinted
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModePunctuated:
		return "punctuated"
	case ModeHinted:
		return "hinted"
	default:
		return "unknown"
	}
}

// ParseMode resolves a configuration string to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "punctuated", "":
		return ModePunctuated, true
	case "hinted":
		return ModeHinted, true
	default:
		return ModePunctuated, false
	}
}

// ParseValue converts a locale-formatted numeric cell into a signed float.
//
// Empty input yields 0. A string wrapped in parentheses is accounting
// notation for a negative amount: "(1.234,56)" parses to -1234.56. Plain
// strings have thousands dots stripped and the decimal comma converted, so
// "1.234,56" parses to 1234.56.
func ParseValue(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}

	negative := strings.Contains(s, "(") && strings.Contains(s, ")")
	if negative {
		s = strings.ReplaceAll(s, "(", "")
		s = strings.ReplaceAll(s, ")", "")
		s = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(normalizePunctuation(s), 64)
	if err != nil {
		return 0, err
	}
	if negative {
		v = -v
	}
	return v, nil
}

// parseHinted is the lenient reader-convention variant: same punctuation
// rules, no parenthesis handling, zero on anything unparseable.
func parseHinted(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(normalizePunctuation(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func normalizePunctuation(s string) string {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return s
}
