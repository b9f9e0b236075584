// Package store persists reports, users and verification records in MongoDB, with
// in-memory equivalents used for local development and tests.
package store

import (
	"context"

	"civicreport-be/apperrors"
	"civicreport-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportStore is the persistence contract for reports. Create and Update assign
// timestamps; GetByID, Update and Delete return a NOT_FOUND AppError for unknown ids.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) (*models.Report, error)
	GetByID(ctx context.Context, id string) (*models.Report, error)
	ListAll(ctx context.Context) ([]*models.Report, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Report, error)
	ListNear(ctx context.Context, point models.GeoPoint, radiusMeters float64) ([]*models.Report, error)
	Update(ctx context.Context, report *models.Report) (*models.Report, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*models.ReportStats, error)
}

// GeoIndex answers proximity queries over stored reports using great-circle distance.
// An empty reportType matches every type.
type GeoIndex interface {
	NearestWithin(ctx context.Context, point models.GeoPoint, radiusMeters float64, reportType models.ReportType) (*models.Report, bool, error)
	Within(ctx context.Context, point models.GeoPoint, radiusMeters float64) ([]*models.Report, error)
}

// VerificationLog is the append-only audit trail of third-party status requests.
type VerificationLog interface {
	Append(ctx context.Context, v *models.Verification) error
	ListByReport(ctx context.Context, reportID string) ([]*models.Verification, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

func parseID(id, resource string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("Invalid "+resource+" ID", err)
	}
	return oid, nil
}
