package services

import (
	"context"
	"math"
	"strings"
	"time"

	"civicreport-be/apperrors"
	"civicreport-be/geo"
	"civicreport-be/metrics"
	"civicreport-be/models"
	"civicreport-be/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultNearbyRadiusMeters = 1000.0
	MaxNearbyRadiusMeters     = 50000.0
	defaultExternalTimeout    = 5 * time.Second
)

type ReportService struct {
	store         store.ReportStore
	dedupe        *DedupeGuard
	machine       VerificationStateMachine
	geocoder      Geocoder
	classifier    Classifier
	boundary      geo.BoundaryChecker
	verifications store.VerificationLog
	timeout       time.Duration
	now           func() time.Time
	log           *logrus.Entry
}

type Option func(*ReportService)

// WithBoundary rejects submissions outside the given region.
func WithBoundary(b geo.BoundaryChecker) Option {
	return func(s *ReportService) { s.boundary = b }
}

// WithVerificationLog records every third-party status request.
func WithVerificationLog(l store.VerificationLog) Option {
	return func(s *ReportService) { s.verifications = l }
}

// WithExternalTimeout bounds each geocoder and classifier call.
func WithExternalTimeout(d time.Duration) Option {
	return func(s *ReportService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *ReportService) { s.now = now }
}

func NewReportService(st store.ReportStore, index store.GeoIndex, geocoder Geocoder, classifier Classifier, log *logrus.Entry, opts ...Option) *ReportService {
	s := &ReportService{
		store:      st,
		dedupe:     NewDedupeGuard(index),
		machine:    NewVerificationStateMachine(),
		geocoder:   geocoder,
		classifier: classifier,
		timeout:    defaultExternalTimeout,
		now:        time.Now,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SubmitInput struct {
	OwnerID     string
	Type        models.ReportType
	Description string
	Location    models.GeoPoint
	Images      []string
}

// Submit stores a new report unless a report of the same type already sits within the
// dedupe radius. Address and category are best-effort: provider failures fall back to
// placeholder values instead of failing the submission.
func (s *ReportService) Submit(ctx context.Context, in SubmitInput) (*models.Report, error) {
	report := &models.Report{
		OwnerID:     in.OwnerID,
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		Location:    models.GeoPoint{Type: "Point", Coordinates: in.Location.Coordinates},
		Address:     models.UnknownAddress,
		Category:    models.Uncategorized,
		Status:      models.WaitingForVerification,
		Images:      in.Images,
	}
	if err := report.Validate(); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("invalid").Inc()
		return nil, apperrors.Validation(err.Error(), err)
	}

	if s.boundary != nil && !s.boundary.Contains(geo.Point{Lng: report.Location.Lng(), Lat: report.Location.Lat()}) {
		metrics.SubmissionsTotal.WithLabelValues("out_of_region").Inc()
		return nil, apperrors.Validation("Location is outside the service area", nil)
	}

	dup, err := s.dedupe.IsDuplicate(ctx, report.Type, report.Location)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Internal("Failed to check for duplicate reports", err)
	}
	if dup {
		metrics.SubmissionsTotal.WithLabelValues("duplicate").Inc()
		s.log.WithFields(logrus.Fields{
			"type": report.Type,
			"lng":  report.Location.Lng(),
			"lat":  report.Location.Lat(),
		}).Info("duplicate report rejected")
		return nil, apperrors.Duplicate("Problem already reported")
	}

	report.Address, report.Category = s.enrich(ctx, report)

	created, err := s.store.Create(ctx, report)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		if apperrors.Is(err, apperrors.CodeValidation) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to create report", err)
	}
	metrics.SubmissionsTotal.WithLabelValues("created").Inc()
	s.log.WithFields(logrus.Fields{
		"report_id": created.ID.Hex(),
		"owner":     created.OwnerID,
		"type":      created.Type,
		"category":  created.Category,
	}).Info("report created")
	return created, nil
}

// enrich calls the geocoder and the classifier concurrently. Neither call can fail the
// submission, so the group never returns an error.
func (s *ReportService) enrich(ctx context.Context, report *models.Report) (address, category string) {
	address, category = models.UnknownAddress, models.Uncategorized

	var g errgroup.Group
	g.Go(func() error {
		if s.geocoder == nil {
			metrics.FallbacksTotal.WithLabelValues("geocoder").Inc()
			return nil
		}
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		place, err := s.geocoder.ReverseGeocode(cctx, report.Location)
		switch {
		case err != nil:
			s.log.WithError(err).Warn("reverse geocoding failed, using fallback address")
		case place == nil || strings.TrimSpace(place.Address) == "":
			s.log.Debug("reverse geocoding returned no result")
		default:
			address = strings.TrimSpace(place.Address)
			return nil
		}
		metrics.FallbacksTotal.WithLabelValues("geocoder").Inc()
		return nil
	})
	g.Go(func() error {
		if s.classifier == nil {
			metrics.FallbacksTotal.WithLabelValues("classifier").Inc()
			return nil
		}
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		label, err := s.classifier.Classify(cctx, report.Description)
		switch {
		case err != nil:
			s.log.WithError(err).Warn("classification failed, using fallback category")
		case strings.TrimSpace(label) == "":
			s.log.Debug("classifier returned an empty label")
		default:
			category = strings.TrimSpace(label)
			return nil
		}
		metrics.FallbacksTotal.WithLabelValues("classifier").Inc()
		return nil
	})
	_ = g.Wait()
	return address, category
}

// UpdateStatus runs a status request through the verification state machine and persists
// the result. Concurrent requests on one report are not serialised; the last write wins.
func (s *ReportService) UpdateStatus(ctx context.Context, requesterID, reportID string, requested models.ReportStatus) (*models.Report, error) {
	if !requested.Valid() {
		return nil, apperrors.Validation("Invalid status", nil)
	}
	if requesterID == "" {
		return nil, apperrors.Unauthorized("User not authenticated", nil)
	}

	current, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return nil, wrapStoreErr(err, "Failed to retrieve report")
	}

	tr := s.machine.Apply(current, requesterID, requested, s.now().UTC())
	updated, err := s.store.Update(ctx, tr.Report)
	if err != nil {
		return nil, wrapStoreErr(err, "Failed to update report")
	}

	role := "owner"
	if !tr.ByOwner {
		role = "verifier"
		s.recordVerification(ctx, updated, requesterID, requested, tr.Applied)
	}
	metrics.StatusUpdatesTotal.WithLabelValues(role, boolLabel(tr.Applied)).Inc()

	s.log.WithFields(logrus.Fields{
		"report_id":          updated.ID.Hex(),
		"requester":          requesterID,
		"role":               role,
		"requested":          requested,
		"status":             updated.Status,
		"verification_count": updated.VerificationCount,
	}).Info("report status request processed")
	return updated, nil
}

func (s *ReportService) recordVerification(ctx context.Context, r *models.Report, userID string, requested models.ReportStatus, applied bool) {
	if s.verifications == nil {
		return
	}
	v := &models.Verification{
		Report:          r.ID,
		User:            userID,
		RequestedStatus: requested,
		Applied:         applied,
		CountAfter:      r.VerificationCount,
		CreatedAt:       r.UpdatedAt,
	}
	if err := s.verifications.Append(ctx, v); err != nil {
		s.log.WithError(err).WithField("report_id", r.ID.Hex()).Warn("failed to record verification")
	}
}

// DeleteReport hard-deletes a report. Only its owner may do so.
func (s *ReportService) DeleteReport(ctx context.Context, requesterID, reportID string) error {
	current, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return wrapStoreErr(err, "Failed to retrieve report")
	}
	if requesterID == "" || current.OwnerID != requesterID {
		return apperrors.Unauthorized("User not authorized", nil)
	}
	if err := s.store.Delete(ctx, reportID); err != nil {
		return wrapStoreErr(err, "Failed to delete report")
	}
	s.log.WithFields(logrus.Fields{"report_id": reportID, "owner": requesterID}).Info("report deleted")
	return nil
}

func (s *ReportService) Get(ctx context.Context, reportID string) (*models.Report, error) {
	r, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return nil, wrapStoreErr(err, "Failed to retrieve report")
	}
	return r, nil
}

func (s *ReportService) ListAll(ctx context.Context) ([]*models.Report, error) {
	reports, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "Failed to retrieve reports")
	}
	return reports, nil
}

func (s *ReportService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Report, error) {
	if ownerID == "" {
		return nil, apperrors.Unauthorized("User not authenticated", nil)
	}
	reports, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, wrapStoreErr(err, "Failed to retrieve reports")
	}
	return reports, nil
}

// ListNear returns reports within radiusMeters of point, closest first. A non-positive
// radius means DefaultNearbyRadiusMeters.
func (s *ReportService) ListNear(ctx context.Context, point models.GeoPoint, radiusMeters float64) ([]*models.Report, error) {
	if err := point.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	if math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) {
		return nil, apperrors.Validation("radius must be a finite number", nil)
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultNearbyRadiusMeters
	}
	if radiusMeters > MaxNearbyRadiusMeters {
		return nil, apperrors.Validation("radius must not exceed 50000 meters", nil)
	}
	reports, err := s.store.ListNear(ctx, point, radiusMeters)
	if err != nil {
		return nil, wrapStoreErr(err, "Failed to retrieve nearby reports")
	}
	return reports, nil
}

func (s *ReportService) Stats(ctx context.Context) (*models.ReportStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "Failed to compute report statistics")
	}
	return stats, nil
}

// Verifications lists the third-party status requests recorded for a report.
func (s *ReportService) Verifications(ctx context.Context, reportID string) ([]*models.Verification, error) {
	if _, err := s.Get(ctx, reportID); err != nil {
		return nil, err
	}
	if s.verifications == nil {
		return []*models.Verification{}, nil
	}
	out, err := s.verifications.ListByReport(ctx, reportID)
	if err != nil {
		return nil, wrapStoreErr(err, "Failed to retrieve verifications")
	}
	return out, nil
}

// wrapStoreErr passes taxonomy errors through and turns anything else into an internal failure.
func wrapStoreErr(err error, message string) error {
	for _, code := range []string{apperrors.CodeNotFound, apperrors.CodeValidation, apperrors.CodeUnauthorized} {
		if apperrors.Is(err, code) {
			return err
		}
	}
	return apperrors.Internal(message, err)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
