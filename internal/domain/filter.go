package domain

// SideList returns the records shown in the side panel: those inside bounds
// that match the criteria. Without bounds nothing is listed.
func SideList(records []LocationRecord, bounds Bounds, hasBounds bool, c Criteria) []LocationRecord {
	if !hasBounds {
		return []LocationRecord{}
	}
	out := make([]LocationRecord, 0, len(records))
	for _, rec := range records {
		if bounds.Contains(rec.Lat, rec.Lon) && c.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Markers returns the records drawn on the map. Unlike SideList it ignores
// the viewport: every matching record gets a marker.
func Markers(records []LocationRecord, c Criteria) []LocationRecord {
	out := make([]LocationRecord, 0, len(records))
	for _, rec := range records {
		if c.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}
