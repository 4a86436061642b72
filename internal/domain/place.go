package domain

import (
	"context"
	"log/slog"
)

// GeocodingResult is what a reverse geocoding provider knows about a point.
type GeocodingResult struct {
	FormattedAddress string
	PlaceName        string
	Confidence       float64
}

// PlaceResolver looks up a human-readable place for a coordinate pair.
type PlaceResolver interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// EnrichWithPlace sets rec.Place from resolver, preferring the short place
// name over the full address. A nil resolver or a failed lookup leaves the
// record as it was.
func EnrichWithPlace(ctx context.Context, rec LocationRecord, resolver PlaceResolver, logger *slog.Logger) LocationRecord {
	if resolver == nil {
		return rec
	}

	res, err := resolver.ReverseGeocode(ctx, rec.Lat, rec.Lon)
	if err != nil {
		logger.Warn("place lookup failed", "name", rec.Name, "lat", rec.Lat, "lon", rec.Lon, "error", err)
		return rec
	}

	if res.PlaceName != "" {
		rec.Place = res.PlaceName
	} else if res.FormattedAddress != "" {
		rec.Place = res.FormattedAddress
	}
	return rec
}
