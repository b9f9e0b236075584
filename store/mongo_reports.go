package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civicreport-be/apperrors"
	"civicreport-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoReportStore keeps reports in a collection with a 2dsphere index on location,
// so it serves as both the ReportStore and the GeoIndex.
type MongoReportStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoReportStore(coll *mongo.Collection) *MongoReportStore {
	return &MongoReportStore{coll: coll, now: time.Now}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func nearFilter(point models.GeoPoint, radiusMeters float64) bson.M {
	return bson.M{
		"$near": bson.M{
			"$geometry":    bson.M{"type": "Point", "coordinates": point.Coordinates},
			"$maxDistance": radiusMeters,
		},
	}
}

func (s *MongoReportStore) Create(ctx context.Context, report *models.Report) (*models.Report, error) {
	r := report.Clone()
	if err := r.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	now := s.now().UTC()
	r.ID = primitive.NewObjectID()
	r.Location.Type = "Point"
	r.CreatedAt = now
	r.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return r, nil
}

func (s *MongoReportStore) GetByID(ctx context.Context, id string) (*models.Report, error) {
	oid, err := parseID(id, "report")
	if err != nil {
		return nil, err
	}
	var r models.Report
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Report", err)
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return &r, nil
}

func (s *MongoReportStore) ListAll(ctx context.Context) ([]*models.Report, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
}

func (s *MongoReportStore) ListByOwner(ctx context.Context, ownerID string) ([]*models.Report, error) {
	return s.find(ctx, bson.M{"user": ownerID}, options.Find().SetSort(newestFirst))
}

// ListNear relies on $near returning documents ordered by ascending distance.
func (s *MongoReportStore) ListNear(ctx context.Context, point models.GeoPoint, radiusMeters float64) ([]*models.Report, error) {
	return s.find(ctx, bson.M{"location": nearFilter(point, radiusMeters)}, options.Find())
}

func (s *MongoReportStore) Within(ctx context.Context, point models.GeoPoint, radiusMeters float64) ([]*models.Report, error) {
	return s.ListNear(ctx, point, radiusMeters)
}

func (s *MongoReportStore) NearestWithin(ctx context.Context, point models.GeoPoint, radiusMeters float64, reportType models.ReportType) (*models.Report, bool, error) {
	filter := bson.M{"location": nearFilter(point, radiusMeters)}
	if reportType != "" {
		filter["type"] = reportType
	}
	var r models.Report
	if err := s.coll.FindOne(ctx, filter).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("nearest report: %w", err)
	}
	return &r, true, nil
}

// Update replaces the whole document and refreshes updatedAt.
func (s *MongoReportStore) Update(ctx context.Context, report *models.Report) (*models.Report, error) {
	r := report.Clone()
	if err := r.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	r.UpdatedAt = s.now().UTC()

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.ID}, r)
	if err != nil {
		return nil, fmt.Errorf("replace report: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.NotFound("Report", nil)
	}
	return r, nil
}

func (s *MongoReportStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "report")
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("Report", nil)
	}
	return nil
}

// Stats groups reports by status and by type in a single $facet aggregation.
func (s *MongoReportStore) Stats(ctx context.Context) (*models.ReportStats, error) {
	group := func(field string) bson.A {
		return bson.A{
			bson.M{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
			bson.M{"$project": bson.M{"name": "$_id", "value": "$count", "_id": 0}},
			bson.M{"$sort": bson.M{"name": 1}},
		}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"byStatus": group("status"),
			"byType":   group("type"),
			"total":    bson.A{bson.M{"$count": "n"}},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate report stats: %w", err)
	}
	defer cursor.Close(ctx)

	var facets []struct {
		ByStatus []models.StatusCount `bson:"byStatus"`
		ByType   []models.StatusCount `bson:"byType"`
		Total    []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
	}
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, fmt.Errorf("decode report stats: %w", err)
	}

	stats := &models.ReportStats{ByStatus: []models.StatusCount{}, ByType: []models.StatusCount{}}
	if len(facets) == 0 {
		return stats, nil
	}
	f := facets[0]
	if f.ByStatus != nil {
		stats.ByStatus = f.ByStatus
	}
	if f.ByType != nil {
		stats.ByType = f.ByType
	}
	if len(f.Total) > 0 {
		stats.Total = f.Total[0].N
	}
	return stats, nil
}

func (s *MongoReportStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Report, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find reports: %w", err)
	}
	defer cursor.Close(ctx)

	reports := make([]*models.Report, 0)
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}
	return reports, nil
}
