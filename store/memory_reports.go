package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"civicreport-be/apperrors"
	"civicreport-be/geo"
	"civicreport-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryReportStore keeps reports in process, indexed by a geohash-bucketed geo.Index.
// Reads and writes are serialised per call; like the Mongo store it gives per-report
// atomicity only.
type MemoryReportStore struct {
	mu      sync.RWMutex
	reports map[primitive.ObjectID]*models.Report
	index   *geo.Index
	now     func() time.Time
}

func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{
		reports: make(map[primitive.ObjectID]*models.Report),
		index:   geo.NewIndex(),
		now:     time.Now,
	}
}

func toGeo(p models.GeoPoint) geo.Point {
	return geo.Point{Lng: p.Lng(), Lat: p.Lat()}
}

func (s *MemoryReportStore) Create(_ context.Context, report *models.Report) (*models.Report, error) {
	r := report.Clone()
	if err := r.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	now := s.now().UTC()
	r.ID = primitive.NewObjectID()
	r.Location.Type = "Point"
	r.CreatedAt = now
	r.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = r
	s.index.Put(geo.Entry{ID: r.ID.Hex(), Tag: string(r.Type), Point: toGeo(r.Location)})
	return r.Clone(), nil
}

func (s *MemoryReportStore) GetByID(_ context.Context, id string) (*models.Report, error) {
	oid, err := parseID(id, "report")
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[oid]
	if !ok {
		return nil, apperrors.NotFound("Report", nil)
	}
	return r.Clone(), nil
}

func (s *MemoryReportStore) ListAll(_ context.Context) ([]*models.Report, error) {
	return s.list(func(*models.Report) bool { return true }), nil
}

func (s *MemoryReportStore) ListByOwner(_ context.Context, ownerID string) ([]*models.Report, error) {
	return s.list(func(r *models.Report) bool { return r.OwnerID == ownerID }), nil
}

func (s *MemoryReportStore) ListNear(ctx context.Context, point models.GeoPoint, radiusMeters float64) ([]*models.Report, error) {
	return s.Within(ctx, point, radiusMeters)
}

func (s *MemoryReportStore) Within(_ context.Context, point models.GeoPoint, radiusMeters float64) ([]*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hits := s.index.Within(toGeo(point), radiusMeters, nil)
	out := make([]*models.Report, 0, len(hits))
	for _, h := range hits {
		if r := s.lookup(h.ID); r != nil {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (s *MemoryReportStore) NearestWithin(_ context.Context, point models.GeoPoint, radiusMeters float64, reportType models.ReportType) (*models.Report, bool, error) {
	var filter func(geo.Entry) bool
	if reportType != "" {
		filter = func(e geo.Entry) bool { return e.Tag == string(reportType) }
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	hit, ok := s.index.NearestWithin(toGeo(point), radiusMeters, filter)
	if !ok {
		return nil, false, nil
	}
	r := s.lookup(hit.ID)
	if r == nil {
		return nil, false, nil
	}
	return r.Clone(), true, nil
}

func (s *MemoryReportStore) Update(_ context.Context, report *models.Report) (*models.Report, error) {
	r := report.Clone()
	if err := r.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[r.ID]; !ok {
		return nil, apperrors.NotFound("Report", nil)
	}
	r.UpdatedAt = s.now().UTC()
	s.reports[r.ID] = r
	s.index.Put(geo.Entry{ID: r.ID.Hex(), Tag: string(r.Type), Point: toGeo(r.Location)})
	return r.Clone(), nil
}

func (s *MemoryReportStore) Delete(_ context.Context, id string) error {
	oid, err := parseID(id, "report")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[oid]; !ok {
		return apperrors.NotFound("Report", nil)
	}
	delete(s.reports, oid)
	s.index.Remove(oid.Hex())
	return nil
}

func (s *MemoryReportStore) Stats(_ context.Context) (*models.ReportStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byStatus := map[string]int64{}
	byType := map[string]int64{}
	for _, r := range s.reports {
		byStatus[string(r.Status)]++
		byType[string(r.Type)]++
	}
	return &models.ReportStats{
		Total:    int64(len(s.reports)),
		ByStatus: sortedCounts(byStatus),
		ByType:   sortedCounts(byType),
	}, nil
}

func (s *MemoryReportStore) lookup(hexID string) *models.Report {
	oid, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil
	}
	return s.reports[oid]
}

func (s *MemoryReportStore) list(keep func(*models.Report) bool) []*models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Report, 0, len(s.reports))
	for _, r := range s.reports {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}

func sortedCounts(m map[string]int64) []models.StatusCount {
	out := make([]models.StatusCount, 0, len(m))
	for name, n := range m {
		out = append(out, models.StatusCount{Name: name, Value: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
