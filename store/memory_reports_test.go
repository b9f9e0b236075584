package store

import (
	"context"
	"testing"
	"time"

	"civicreport-be/apperrors"
	"civicreport-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newReport(owner string, t models.ReportType, lng, lat float64) *models.Report {
	return &models.Report{
		OwnerID:     owner,
		Type:        t,
		Description: "Broken streetlight",
		Location:    models.NewPoint(lng, lat),
		Address:     models.UnknownAddress,
		Category:    models.Uncategorized,
		Status:      models.WaitingForVerification,
		Images:      []string{"img/1.jpg"},
	}
}

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestMemoryReportStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore()
	s.now = steppingClock()

	created, err := s.Create(ctx, newReport("u1", models.Infrastructure, -79.38, 43.65))
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, "Point", created.Location.Type)

	got, err := s.GetByID(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created, got)

	got.Images[0] = "mutated"
	again, err := s.GetByID(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "img/1.jpg", again.Images[0])
}

func TestMemoryReportStoreCreateValidates(t *testing.T) {
	s := NewMemoryReportStore()
	r := newReport("u1", models.Infrastructure, 200, 43.65)

	_, err := s.Create(context.Background(), r)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	assert.Zero(t, s.index.Len())
}

func TestMemoryReportStoreMissingIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore()
	missing := primitive.NewObjectID().Hex()

	_, err := s.GetByID(ctx, missing)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	_, err = s.GetByID(ctx, "not-an-id")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	assert.True(t, apperrors.Is(s.Delete(ctx, missing), apperrors.CodeNotFound))

	r := newReport("u1", models.Human, 1, 1)
	r.ID = primitive.NewObjectID()
	_, err = s.Update(ctx, r)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestMemoryReportStoreListingsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore()
	s.now = steppingClock()

	first, _ := s.Create(ctx, newReport("u1", models.Human, 1, 1))
	second, _ := s.Create(ctx, newReport("u2", models.Human, 2, 2))
	third, _ := s.Create(ctx, newReport("u1", models.Cleanliness, 3, 3))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{third.ID, second.ID, first.ID}, reportIDs(all))

	mine, err := s.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{third.ID, first.ID}, reportIDs(mine))

	none, err := s.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryReportStoreProximity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore()

	far, _ := s.Create(ctx, newReport("u1", models.Infrastructure, -79.37, 43.65))
	near, _ := s.Create(ctx, newReport("u1", models.Cleanliness, -79.38001, 43.65))
	mid, _ := s.Create(ctx, newReport("u1", models.Infrastructure, -79.381, 43.65))
	origin := models.NewPoint(-79.38, 43.65)

	list, err := s.ListNear(ctx, origin, 1000)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{near.ID, mid.ID, far.ID}, reportIDs(list))

	got, ok, err := s.NearestWithin(ctx, origin, 5, models.Cleanliness)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, near.ID, got.ID)

	_, ok, err = s.NearestWithin(ctx, origin, 5, models.Infrastructure)
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err = s.NearestWithin(ctx, origin, 1000, "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, near.ID, got.ID)

	require.NoError(t, s.Delete(ctx, near.ID.Hex()))
	list, err = s.Within(ctx, origin, 1000)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{mid.ID, far.ID}, reportIDs(list))
}

func TestMemoryReportStoreUpdateRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore()
	s.now = steppingClock()

	created, err := s.Create(ctx, newReport("u1", models.Human, 1, 1))
	require.NoError(t, err)

	created.Status = models.Solved
	created.VerificationCount = 2
	updated, err := s.Update(ctx, created)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	got, _ := s.GetByID(ctx, created.ID.Hex())
	assert.Equal(t, models.Solved, got.Status)
	assert.Equal(t, 2, got.VerificationCount)
}

func TestMemoryReportStoreStats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore()
	_, _ = s.Create(ctx, newReport("u1", models.Human, 1, 1))
	_, _ = s.Create(ctx, newReport("u1", models.Human, 2, 2))
	solved := newReport("u1", models.Cleanliness, 3, 3)
	solved.Status = models.Solved
	_, _ = s.Create(ctx, solved)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, []models.StatusCount{{Name: "Solved", Value: 1}, {Name: "Waiting for verification", Value: 2}}, stats.ByStatus)
	assert.Equal(t, []models.StatusCount{{Name: "cleanliness", Value: 1}, {Name: "human", Value: 2}}, stats.ByType)
}

func TestMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()

	u, err := s.Create(ctx, &models.User{Name: "Ada", Email: "Ada@Example.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = s.Create(ctx, &models.User{Name: "Other", Email: "ada@example.com"})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	byEmail, err := s.FindByEmail(ctx, " ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := s.FindByID(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)

	_, err = s.FindByID(ctx, primitive.NewObjectID().Hex())
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestMemoryVerificationLog(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryVerificationLog()
	reportID := primitive.NewObjectID()

	require.NoError(t, l.Append(ctx, &models.Verification{Report: reportID, User: "u2", RequestedStatus: models.Solved, CountAfter: 1}))
	require.NoError(t, l.Append(ctx, &models.Verification{Report: primitive.NewObjectID(), User: "u3"}))
	require.NoError(t, l.Append(ctx, &models.Verification{Report: reportID, User: "u2", RequestedStatus: models.Solved, Applied: true, CountAfter: 2}))

	entries, err := l.ListByReport(ctx, reportID.Hex())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].CountAfter)
	assert.True(t, entries[1].Applied)
	assert.False(t, entries[0].ID.IsZero())
}

func reportIDs(rs []*models.Report) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}
