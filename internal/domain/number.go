package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Number is an integer that may be absent. An invalid Number stands in for
// input that could not be read as an integer.
type Number struct {
	Value int
	Valid bool
}

// Int returns a valid Number holding v.
func Int(v int) Number {
	return Number{Value: v, Valid: true}
}

// Set reports whether the number is present and non-zero. Zero is treated
// the same as an absent value by the date-range gate.
func (n Number) Set() bool {
	return n.Valid && n.Value != 0
}

// String renders the value, or "NaN" when the number is invalid.
func (n Number) String() string {
	if !n.Valid {
		return "NaN"
	}
	return strconv.Itoa(n.Value)
}

// ParseNumber reads the leading integer of s: leading whitespace is skipped,
// an optional sign is accepted, then the longest run of decimal digits is
// used. Trailing garbage is ignored ("12abc" is 12). Input without leading
// digits yields an invalid Number. A digit run too long for an int saturates
// at math.MaxInt or math.MinInt, so it still counts as a set, non-zero value.
func ParseNumber(s string) Number {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return Number{}
	}

	v, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		if s[0] == '-' {
			return Int(math.MinInt)
		}
		return Int(math.MaxInt)
	}
	if err != nil {
		return Number{}
	}
	return Int(v)
}
