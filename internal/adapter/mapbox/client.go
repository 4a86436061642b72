package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/cat-map/internal/domain"
	"github.com/couchcryptid/cat-map/internal/observability"
)

const defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// placeTypes limits results to labels that read well under a cat's name.
const placeTypes = "place,locality,neighborhood"

// StatusError is returned when Mapbox answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mapbox status %d: %s", e.Code, e.Body)
}

// Client resolves record coordinates to place labels through the Mapbox
// reverse geocoding endpoint. It implements domain.PlaceResolver.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient returns a Client whose requests give up after timeout.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// ReverseGeocode looks up the best place label for a point. A point with no
// match yields an empty result and no error.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	start := time.Now()
	res, err := c.lookup(ctx, c.endpoint(lat, lon))
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())
	c.metrics.GeocodeRequests.WithLabelValues(outcome(res, err)).Inc()
	return res, err
}

// endpoint builds the request URL. Mapbox takes the point as "lon,lat".
func (c *Client) endpoint(lat, lon float64) string {
	point := strconv.FormatFloat(lon, 'f', 6, 64) + "," + strconv.FormatFloat(lat, 'f', 6, 64)
	q := url.Values{}
	q.Set("access_token", c.token)
	q.Set("limit", "1")
	q.Set("types", placeTypes)
	return c.baseURL + "/" + point + ".json?" + q.Encode()
}

func (c *Client) lookup(ctx context.Context, endpoint string) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("build mapbox request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("mapbox request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return domain.GeocodingResult{}, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode mapbox response: %w", err)
	}
	if len(fc.Features) == 0 {
		c.logger.Debug("no place found", "path", req.URL.Path)
		return domain.GeocodingResult{}, nil
	}

	best := fc.Features[0]
	return domain.GeocodingResult{
		FormattedAddress: best.PlaceName,
		PlaceName:        best.Text,
		Confidence:       best.Relevance,
	}, nil
}

func outcome(res domain.GeocodingResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case res.FormattedAddress == "" && res.PlaceName == "":
		return "empty"
	}
	return "success"
}

// featureCollection is the subset of the Mapbox response we read.
type featureCollection struct {
	Features []struct {
		PlaceName string  `json:"place_name"`
		Text      string  `json:"text"`
		Relevance float64 `json:"relevance"`
	} `json:"features"`
}
