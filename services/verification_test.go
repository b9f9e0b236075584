package services

import (
	"context"
	"testing"
	"time"

	"civicreport-be/models"
	"civicreport-be/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingReport(owner string) *models.Report {
	return &models.Report{
		OwnerID:     owner,
		Type:        models.Infrastructure,
		Description: "Pothole",
		Location:    models.NewPoint(-79.38, 43.65),
		Address:     models.UnknownAddress,
		Category:    models.Uncategorized,
		Status:      models.WaitingForVerification,
	}
}

func TestStateMachineOwnerSetsStatusDirectly(t *testing.T) {
	m := NewVerificationStateMachine()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	in := pendingReport("owner")

	tr := m.Apply(in, "owner", models.Solved, now)

	assert.True(t, tr.ByOwner)
	assert.True(t, tr.Applied)
	assert.Equal(t, models.Solved, tr.Report.Status)
	assert.Equal(t, 0, tr.Report.VerificationCount)
	assert.Equal(t, now, tr.Report.UpdatedAt)
	assert.Equal(t, models.WaitingForVerification, in.Status, "input must not change")
}

func TestStateMachineThirdPartyNeedsTwoConfirmations(t *testing.T) {
	m := NewVerificationStateMachine()
	now := time.Now()

	first := m.Apply(pendingReport("owner"), "alice", models.Verified, now)
	assert.False(t, first.ByOwner)
	assert.False(t, first.Applied)
	assert.Equal(t, 1, first.Report.VerificationCount)
	assert.Equal(t, models.WaitingForVerification, first.Report.Status)

	second := m.Apply(first.Report, "bob", models.Verified, now)
	assert.True(t, second.Applied)
	assert.Equal(t, 2, second.Report.VerificationCount)
	assert.Equal(t, models.Verified, second.Report.Status)

	// Past the threshold every further request lands immediately.
	third := m.Apply(second.Report, "carol", models.InProgress, now)
	assert.True(t, third.Applied)
	assert.Equal(t, 3, third.Report.VerificationCount)
	assert.Equal(t, models.InProgress, third.Report.Status)
}

func TestStateMachineOwnerDoesNotTouchCount(t *testing.T) {
	m := NewVerificationStateMachine()
	r := pendingReport("owner")
	r.VerificationCount = 1

	tr := m.Apply(r, "owner", models.WaitingForVerification, time.Now())
	assert.Equal(t, 1, tr.Report.VerificationCount)
	assert.Equal(t, models.WaitingForVerification, tr.Report.Status)
}

func TestStateMachineZeroValueUsesDefaultThreshold(t *testing.T) {
	var m VerificationStateMachine
	tr := m.Apply(pendingReport("owner"), "alice", models.Solved, time.Now())
	assert.False(t, tr.Applied)
}

func TestDedupeGuard(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryReportStore()
	_, err := st.Create(ctx, pendingReport("owner"))
	require.NoError(t, err)
	g := NewDedupeGuard(st)

	dup, err := g.IsDuplicate(ctx, models.Infrastructure, models.NewPoint(-79.38, 43.65))
	require.NoError(t, err)
	assert.True(t, dup)

	// About 3 m east.
	dup, err = g.IsDuplicate(ctx, models.Infrastructure, models.NewPoint(-79.38004, 43.65))
	require.NoError(t, err)
	assert.True(t, dup)

	// About 8 m east.
	dup, err = g.IsDuplicate(ctx, models.Infrastructure, models.NewPoint(-79.3801, 43.65))
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = g.IsDuplicate(ctx, models.Human, models.NewPoint(-79.38, 43.65))
	require.NoError(t, err)
	assert.False(t, dup)
}
