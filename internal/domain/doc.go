// Package domain models the location records ("cats") plotted by the map
// viewer and the rules that decide which of them are shown.
//
// # Seed Format
//
// Each seed row carries a timestamp in the form
//
//	"<month>/<day>/<year> <hh>:<mm>:<ss> <AM|PM>"  →  e.g. "4/3/2025 1:14:36 AM"
//
// plus a free-text name, an opaque code and a WGS-84 coordinate pair. Seed
// rows are normalized exactly once into [LocationRecord] values: the date
// token becomes integer month, day and year parts and the time token plus the
// AM/PM marker becomes a display-only time of day. Runs of whitespace between
// tokens are tolerated.
//
// Malformed timestamps never abort normalization. Date parts that cannot be
// read become invalid [Number] values, and a record with any invalid date part
// never passes an active date-range filter.
//
// # Filtering
//
// Two display sets are derived from the same records and [Criteria]:
//
//	Side list: records inside the current viewport [Bounds] that match.
//	Markers:   every record that matches, regardless of the viewport.
//
// A record matches when its name contains the query (case-sensitive
// substring) and, if the date filter is active, its encoded date lies inside
// the inclusive range. Dates are encoded as year*10000 + month*100 + day and
// compared numerically; no calendar validation is done.
//
// The date filter is active only when all six bound fields are set. A bound
// field of zero counts as not set.
package domain
