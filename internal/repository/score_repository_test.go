package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

func TestScoreRepositoryUpsertKeepsAutoHiddenAt(t *testing.T) {
	ctx := context.Background()
	db, caps := testDB(t)
	repo := NewScoreRepository(db, caps)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, &models.ContentScore{
		ContentType: "post", ContentID: "p1", ReportsCount: 1, ReportersCount: 1,
		WeightTotal: 3, WeightThreshold: 16, SiteScale: 1, LastRecomputedAt: now,
	}))
	require.NoError(t, repo.MarkAutoHidden(ctx, "post", "p1", now, 17.5, 1.1))

	require.NoError(t, repo.Upsert(ctx, &models.ContentScore{
		ContentType: "post", ContentID: "p1", ReportsCount: 4, ReportersCount: 3,
		WeightTotal: 20, WeightThreshold: 16, SiteScale: 1, LastRecomputedAt: now.Add(time.Minute),
	}))

	got, err := repo.Get(ctx, "post", "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 4, got.ReportsCount)
	assert.Equal(t, 3, got.ReportersCount)
	assert.Equal(t, 20.0, got.WeightTotal)
	require.NotNil(t, got.AutoHiddenAt, "recompute never clears the auto-hide stamp")

	var rows int64
	require.NoError(t, db.Model(&models.ContentScore{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	missing, err := repo.Get(ctx, "post", "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
