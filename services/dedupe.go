package services

import (
	"context"

	"civicreport-be/models"
	"civicreport-be/store"
)

// DedupeRadiusMeters is the distance within which two reports of the same type are the
// same problem.
const DedupeRadiusMeters = 5.0

// DedupeGuard is a best-effort duplicate check: it is not coupled to the insert that
// follows, so two simultaneous submissions at one spot can both pass.
type DedupeGuard struct {
	index  store.GeoIndex
	radius float64
}

func NewDedupeGuard(index store.GeoIndex) *DedupeGuard {
	return &DedupeGuard{index: index, radius: DedupeRadiusMeters}
}

func (g *DedupeGuard) IsDuplicate(ctx context.Context, reportType models.ReportType, point models.GeoPoint) (bool, error) {
	_, found, err := g.index.NearestWithin(ctx, point, g.radius, reportType)
	if err != nil {
		return false, err
	}
	return found, nil
}
