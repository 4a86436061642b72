package domain

import (
	"errors"
	"strings"
)

// ErrUnknownField is returned when a filter input name is not recognized.
var ErrUnknownField = errors.New("unknown filter field")

// Filter input names as sent by the page.
const (
	FieldQuery     = "query"
	FieldFromDay   = "fromDay"
	FieldFromMonth = "fromMonth"
	FieldFromYear  = "fromYear"
	FieldToDay     = "toDay"
	FieldToMonth   = "toMonth"
	FieldToYear    = "toYear"
)

// DateParts is one end of the date range as typed by the user.
type DateParts struct {
	Day   Number `json:"day"`
	Month Number `json:"month"`
	Year  Number `json:"year"`
}

func (d DateParts) set() bool {
	return d.Day.Set() && d.Month.Set() && d.Year.Set()
}

// Criteria are the user-supplied filters. The zero value matches everything.
type Criteria struct {
	Query string
	From  DateParts
	To    DateParts
}

// Apply parses raw and stores it under the named field. Date fields use
// [ParseNumber], so unreadable input simply leaves the field unset.
func (c *Criteria) Apply(field, raw string) error {
	switch field {
	case FieldQuery:
		c.Query = raw
	case FieldFromDay:
		c.From.Day = ParseNumber(raw)
	case FieldFromMonth:
		c.From.Month = ParseNumber(raw)
	case FieldFromYear:
		c.From.Year = ParseNumber(raw)
	case FieldToDay:
		c.To.Day = ParseNumber(raw)
	case FieldToMonth:
		c.To.Month = ParseNumber(raw)
	case FieldToYear:
		c.To.Year = ParseNumber(raw)
	default:
		return ErrUnknownField
	}
	return nil
}

// DateFilterActive reports whether all six range fields are set. If any is
// missing or zero, neither bound is enforced.
func (c Criteria) DateFilterActive() bool {
	return c.From.set() && c.To.set()
}

// MatchesQuery is a case-sensitive substring test on the record name. An
// empty query matches every record.
func (c Criteria) MatchesQuery(rec LocationRecord) bool {
	if c.Query == "" {
		return true
	}
	return strings.Contains(rec.Name, c.Query)
}

// MatchesDate reports whether the record's encoded date lies inside the
// inclusive range. Records with an unreadable date never pass an active filter.
// When a part is too large for the int64 encoding the three dates are
// compared in float64 instead.
func (c Criteria) MatchesDate(rec LocationRecord) bool {
	if !c.DateFilterActive() {
		return true
	}
	got, gotOK := rec.EncodedDate()
	from, fromOK := encodeDate(c.From.Day, c.From.Month, c.From.Year)
	to, toOK := encodeDate(c.To.Day, c.To.Month, c.To.Year)
	if gotOK && fromOK && toOK {
		return from <= got && got <= to
	}

	gotF, ok := approxDate(rec.Day, rec.Month, rec.Year)
	if !ok {
		return false
	}
	fromF, _ := approxDate(c.From.Day, c.From.Month, c.From.Year)
	toF, _ := approxDate(c.To.Day, c.To.Month, c.To.Year)
	return fromF <= gotF && gotF <= toF
}

// Matches combines the query and date predicates.
func (c Criteria) Matches(rec LocationRecord) bool {
	return c.MatchesQuery(rec) && c.MatchesDate(rec)
}
