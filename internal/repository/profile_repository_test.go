package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
)

func TestProfileRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	db, caps := testDB(t)
	repo := NewProfileRepository(db, caps)
	id := uuid.New()

	none, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, none)

	p, err := repo.GetOrCreate(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 1.0, p.TrustScore)

	again, err := repo.GetOrCreate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, again.UserID)

	require.NoError(t, repo.IncrementSubmitted(ctx, id))
	require.NoError(t, repo.IncrementSubmitted(ctx, id))
	require.NoError(t, repo.IncrementOutcome(ctx, id, models.ReportConfirmed, 2))
	require.NoError(t, repo.IncrementOutcome(ctx, id, models.ReportAutoHidden, 1))
	assert.ErrorIs(t, repo.IncrementOutcome(ctx, id, "bogus", 1), moderation.ErrInvalidResolution)

	now := time.Now().UTC()
	p.TrustScore, p.Weight, p.ActivityPoints, p.LastComputedAt = 1.5, 4.5, 12, &now
	p.ReportsSubmitted = 99 // counters are not written by Save
	require.NoError(t, repo.Save(ctx, p))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ReportsSubmitted)
	assert.Equal(t, 2, got.ReportsConfirmed)
	assert.Equal(t, 1, got.ReportsAutoHidden)
	assert.Equal(t, 3, got.Resolved())
	assert.Equal(t, 1.5, got.TrustScore)
	assert.Equal(t, 4.5, got.Weight)
	assert.Equal(t, 12.0, got.ActivityPoints)
}
