package domain

// EmptyListMessage is shown when bounds are known but nothing is listed.
const EmptyListMessage = "No cats found in the current map view."

// Card is the rendered form of one record, used for list items and marker
// popups alike.
type Card struct {
	Name  string  `json:"name"`
	Code  string  `json:"code"`
	When  string  `json:"when"`
	Place string  `json:"place,omitempty"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// View is everything the page needs to draw the side panel and the markers.
type View struct {
	List         []Card `json:"list"`
	Markers      []Card `json:"markers"`
	HasBounds    bool   `json:"has_bounds"`
	EmptyMessage string `json:"empty_message,omitempty"`
}

// NewCard renders a record. When reads "{month}/{day}/{year} {timeOfDay}",
// with unreadable date parts printed as NaN.
func NewCard(rec LocationRecord) Card {
	return Card{
		Name:  rec.Name,
		Code:  rec.Code,
		When:  rec.Month.String() + "/" + rec.Day.String() + "/" + rec.Year.String() + " " + rec.TimeOfDay,
		Place: rec.Place,
		Lat:   rec.Lat,
		Lon:   rec.Lon,
	}
}

// NewCards renders records in order.
func NewCards(recs []LocationRecord) []Card {
	out := make([]Card, 0, len(recs))
	for _, rec := range recs {
		out = append(out, NewCard(rec))
	}
	return out
}

// NewView assembles a View from already-filtered sets.
func NewView(list, markers []LocationRecord, hasBounds bool) View {
	v := View{
		List:      NewCards(list),
		Markers:   NewCards(markers),
		HasBounds: hasBounds,
	}
	if hasBounds && len(list) == 0 {
		v.EmptyMessage = EmptyListMessage
	}
	return v
}
