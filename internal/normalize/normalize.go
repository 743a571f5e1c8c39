// Package normalize provides the pure canonicalisation helpers shared by
// every dataset transformer: text and lot-number keys, upstream date
// parsing, exact currency conversion, and the content-derived identity.
//
// Every function is total and side-effect free. Parse failures return
// the zero value (or nil) instead of an error so that one malformed
// field never blocks ingestion of the rest of the record.
package normalize

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// dateLayouts are the date shapes observed across the upstream feeds.
// The first ten characters are matched so trailing time parts are
// tolerated.
var dateLayouts = []string{
	"20060102",
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
}

// Text returns a compact join key: lower-cased with ALL whitespace
// removed. Empty input yields the empty string.
func Text(value string) string {
	if value == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// LotNumber keeps only digits and hyphens, the shape of lot/parcel
// identifiers used for joins.
func LotNumber(value string) string {
	if value == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Date parses an upstream date string. The feeds mostly emit 8-digit
// YYYYMMDD values, but dashed, dotted and slashed variants appear in
// older datasets. As a last resort the first eight digits are used.
// Unparseable input yields nil.
func Date(value string) *time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}

	head := trimmed
	if len(head) > 10 {
		head = head[:10]
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, head, time.UTC); err == nil {
			return &t
		}
	}

	digits := digitsOnly(trimmed)
	if len(digits) >= 8 {
		if t, err := time.ParseInLocation("20060102", digits[:8], time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

// ManwonToKRW converts an amount expressed in ten-thousand-won units
// into won. The conversion is exact: the decimal point is shifted four
// places in the digit string, never multiplied through a float. Commas
// and surrounding whitespace are tolerated; anything else yields nil.
func ManwonToKRW(value string) *int64 {
	s := strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if s == "" {
		return nil
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" {
		return nil
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return nil
	}
	// Shift the decimal point four places: pad the fraction to four
	// digits and fold it into the integer part. Digits beyond the
	// fourth would be sub-won amounts; the feeds never emit them.
	for len(fracPart) < 4 {
		fracPart += "0"
	}
	if len(fracPart) > 4 {
		fracPart = fracPart[:4]
	}

	won, err := strconv.ParseInt(intPart+fracPart, 10, 64)
	if err != nil {
		return nil
	}
	if negative {
		won = -won
	}
	return &won
}

// Int parses an integer field, tolerating blanks and surrounding
// whitespace. A trailing decimal fraction of zeros ("12.0") is
// accepted the way the feeds emit it.
func Int(value string) *int {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		n := int(f)
		return &n
	}
	return nil
}

// Float parses a decimal field such as an area. Nil on failure.
func Float(value string) *float64 {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
