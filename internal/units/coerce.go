package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Cell coercion never fails: each helper returns a usable value plus ok=false
// when the fallback had to be used.

// StringCell trims the value, drops invalid byte sequences and control
// characters, and returns it in NFC form.
func StringCell(raw any) string {
	var s string
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		s = v
	case []byte:
		s = string(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' {
			return -1
		}
		return r
	}, s)
	return norm.NFC.String(strings.TrimSpace(s))
}

// FloatCell parses numbers that arrive either as numeric cells or as text.
// A comma is accepted as the decimal separator. Non-finite values are rejected.
func FloatCell(raw any, fallback float64) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		s := normalizeNumeric(StringCell(raw))
		if s == "" {
			return fallback, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fallback, false
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback, false
	}
	return f, true
}

// IntCell routes through a float parse so "3.0" (a spreadsheet-serialized
// integer) reads as 3. The fractional part is truncated.
func IntCell(raw any, fallback int) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	f, ok := FloatCell(raw, 0)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return fallback, false
	}
	return int(f), true
}

// DecimalCell reads the cell's text exactly when possible and otherwise
// falls back to the float reading, rounding to places either way.
func DecimalCell(raw any, places int32, fallback decimal.Decimal) (decimal.Decimal, bool) {
	if s := normalizeNumeric(StringCell(raw)); s != "" {
		if d, err := decimal.NewFromString(s); err == nil {
			return d.Round(places), true
		}
	}
	f, ok := FloatCell(raw, 0)
	if !ok {
		return fallback.Round(places), false
	}
	return decimal.NewFromFloat(f).Round(places), true
}

// Truncate cuts s to at most max characters without splitting a character
// or separating a base character from its combining marks. If the result is
// not valid text, fallback is returned instead.
func Truncate(s string, max int, fallback string) string {
	if max <= 0 {
		return ""
	}
	s = norm.NFC.String(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)
	cut := max
	for cut > 0 && unicode.Is(unicode.Mn, runes[cut]) {
		cut--
	}
	out := string(runes[:cut])
	if !utf8.ValidString(out) || (cut == 0 && max > 0) {
		return fallback
	}
	return out
}

// normalizeNumeric strips grouping spaces and settles the decimal separator.
// With both "," and "." present the last one is the decimal point, so
// "1.234,56" and "1,234.56" both read as 1234.56. A lone comma is a decimal
// comma. Anything left ambiguous comes back as "" so callers fall back.
func normalizeNumeric(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")

	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')
	switch {
	case lastComma < 0:
		return s
	case lastDot < 0:
		if strings.Count(s, ",") > 1 {
			return ""
		}
		return strings.Replace(s, ",", ".", 1)
	case lastComma > lastDot:
		if strings.Count(s, ",") > 1 {
			return ""
		}
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	default:
		if strings.Count(s, ".") > 1 {
			return ""
		}
		return strings.ReplaceAll(s, ",", "")
	}
}
