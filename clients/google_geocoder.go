// Package clients holds the outbound provider integrations: Google Geocoding, OpenAI chat
// completions and a Redis cache in front of the geocoder.
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"civicreport-be/metrics"
	"civicreport-be/models"

	"github.com/sirupsen/logrus"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

var errMissingKey = errors.New("missing api key")

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// GoogleGeocoder talks to the Google Geocoding REST API.
type GoogleGeocoder struct {
	client  *http.Client
	key     string
	baseURL string
	log     *logrus.Entry
}

// NewGoogleGeocoder uses a 5s-timeout client when client is nil.
func NewGoogleGeocoder(client *http.Client, key string, log *logrus.Entry) *GoogleGeocoder {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &GoogleGeocoder{client: client, key: key, baseURL: googleGeocodeURL, log: log}
}

// ReverseGeocode resolves a point to the first formatted address Google returns.
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, point models.GeoPoint) (*models.Place, error) {
	q := url.Values{}
	q.Set("latlng", strconv.FormatFloat(point.Lat(), 'f', -1, 64)+","+strconv.FormatFloat(point.Lng(), 'f', -1, 64))
	return g.lookup(ctx, "reverse", q)
}

// Geocode resolves free-text address to a point.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (*models.Place, error) {
	q := url.Values{}
	q.Set("address", address)
	return g.lookup(ctx, "forward", q)
}

func (g *GoogleGeocoder) lookup(ctx context.Context, kind string, q url.Values) (*models.Place, error) {
	if g.key == "" {
		return nil, errMissingKey
	}
	q.Set("key", g.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	t0 := time.Now()
	outcome := "error"
	defer func() {
		metrics.ExternalDurationMs.WithLabelValues("geocoder", outcome).Observe(float64(time.Since(t0).Milliseconds()))
	}()

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var r geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	g.log.WithFields(logrus.Fields{
		"kind":    kind,
		"status":  r.Status,
		"results": len(r.Results),
		"ms":      time.Since(t0).Milliseconds(),
	}).Debug("geocode response")

	switch r.Status {
	case "OK":
	case "ZERO_RESULTS":
		outcome = "empty"
		return nil, nil
	default:
		return nil, fmt.Errorf("geocode failed: %s %s", r.Status, r.ErrorMessage)
	}
	if len(r.Results) == 0 || r.Results[0].FormattedAddress == "" {
		outcome = "empty"
		return nil, nil
	}

	outcome = "ok"
	first := r.Results[0]
	return &models.Place{
		Address:  first.FormattedAddress,
		Location: models.NewPoint(first.Geometry.Location.Lng, first.Geometry.Location.Lat),
	}, nil
}
