package domain

import (
	"math"
	"strings"
)

// RawRecord is a seed row before normalization.
type RawRecord struct {
	Timestamp string  `json:"timestamp" yaml:"timestamp"`
	Name      string  `json:"name" yaml:"name"`
	Code      string  `json:"code" yaml:"code"`
	Lat       float64 `json:"lat" yaml:"lat"`
	Lon       float64 `json:"lon" yaml:"lon"`
}

// LocationRecord is a normalized, read-only location entry.
type LocationRecord struct {
	TimeOfDay string  `json:"time_of_day"`
	Name      string  `json:"name"`
	Code      string  `json:"code"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Month     Number  `json:"-"`
	Day       Number  `json:"-"`
	Year      Number  `json:"-"`

	// Place is an optional reverse-geocoded label. Display only.
	Place string `json:"place,omitempty"`
}

// Normalize converts a seed row into a LocationRecord. It never fails: a
// malformed timestamp leaves the affected date parts invalid and the time of
// day built from whatever tokens are present.
func Normalize(raw RawRecord) LocationRecord {
	tokens := strings.Fields(raw.Timestamp)

	rec := LocationRecord{
		TimeOfDay: token(tokens, 1) + " " + token(tokens, 2),
		Name:      raw.Name,
		Code:      raw.Code,
		Lat:       raw.Lat,
		Lon:       raw.Lon,
	}

	date := strings.Split(token(tokens, 0), "/")
	rec.Month = parsePart(date, 0)
	rec.Day = parsePart(date, 1)
	rec.Year = parsePart(date, 2)
	return rec
}

// NormalizeAll normalizes every row, preserving order.
func NormalizeAll(raw []RawRecord) []LocationRecord {
	out := make([]LocationRecord, 0, len(raw))
	for _, r := range raw {
		out = append(out, Normalize(r))
	}
	return out
}

// EncodedDate returns year*10000 + month*100 + day. ok is false when any
// part is invalid or too large for the encoding to fit in an int64.
func (r LocationRecord) EncodedDate() (int64, bool) {
	return encodeDate(r.Day, r.Month, r.Year)
}

func token(tokens []string, i int) string {
	if i < len(tokens) {
		return tokens[i]
	}
	return ""
}

func parsePart(parts []string, i int) Number {
	if i >= len(parts) {
		return Number{}
	}
	return ParseNumber(parts[i])
}

// Largest part magnitudes whose encoding still fits in an int64.
const (
	maxEncodableYear = math.MaxInt64/10000 - 100_000
	maxEncodablePart = 1_000_000
)

func encodeDate(day, month, year Number) (int64, bool) {
	if !day.Valid || !month.Valid || !year.Valid {
		return 0, false
	}
	if !encodable(year.Value, maxEncodableYear) || !encodable(month.Value, maxEncodablePart) || !encodable(day.Value, maxEncodablePart) {
		return 0, false
	}
	return int64(year.Value)*10000 + int64(month.Value)*100 + int64(day.Value), true
}

func encodable(v int, limit int64) bool {
	return int64(v) <= limit && int64(v) >= -limit
}

// approxDate is the float64 form of the encoding, used to order dates whose
// parts are too large for encodeDate.
func approxDate(day, month, year Number) (float64, bool) {
	if !day.Valid || !month.Valid || !year.Valid {
		return 0, false
	}
	return float64(year.Value)*10000 + float64(month.Value)*100 + float64(day.Value), true
}
