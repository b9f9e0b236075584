package services

import (
	"context"

	"civicreport-be/models"
)

// Geocoder resolves coordinates to addresses and back. A nil place with a nil error means
// the provider had no result.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, point models.GeoPoint) (*models.Place, error)
	Geocode(ctx context.Context, address string) (*models.Place, error)
}

// Classifier maps a free-text description to a short category label.
// An empty label with a nil error means the provider had no answer.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}
