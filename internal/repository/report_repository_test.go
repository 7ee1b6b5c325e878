package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
)

func TestReportRepositoryCreateAndDuplicate(t *testing.T) {
	ctx := context.Background()
	db, caps := testDB(t)
	repo := NewReportRepository(db, caps)
	reporter := uuid.New()

	first := &models.Report{ReporterID: &reporter, ContentType: "post", ContentID: "p1", ContentRef: "my-slug", Reason: "spam", Weight: 3}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, models.ReportPending, first.Status)

	dup, err := repo.HasDuplicate(ctx, reporter, "post", []string{"my-slug"})
	require.NoError(t, err)
	assert.True(t, dup, "raw reference counts as an identifier")

	dup, err = repo.HasDuplicate(ctx, reporter, "question", []string{"p1"})
	require.NoError(t, err)
	assert.False(t, dup)

	second := &models.Report{ReporterID: &reporter, ContentType: "post", ContentID: "p1", ContentRef: "p1", Reason: "spam", Weight: 3}
	assert.ErrorIs(t, repo.Create(ctx, second), moderation.ErrDuplicateReport)

	// anonymous reports are never duplicates of each other
	require.NoError(t, repo.Create(ctx, &models.Report{ContentType: "post", ContentID: "p1", ContentRef: "p1", Reason: "spam", Weight: 1}))
	require.NoError(t, repo.Create(ctx, &models.Report{ContentType: "post", ContentID: "p1", ContentRef: "p1", Reason: "spam", Weight: 1}))

	rows, err := repo.ListForContent(ctx, "post", []string{"p1", "my-slug"})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestReportRepositoryCountSince(t *testing.T) {
	ctx := context.Background()
	db, caps := testDB(t)
	repo := NewReportRepository(db, caps)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i, age := range []time.Duration{time.Hour, 48 * time.Hour, 10 * 24 * time.Hour} {
		r := &models.Report{ContentType: "post", ContentID: "c", ContentRef: "c", Reason: "spam", Weight: 1, CreatedAt: now.Add(-age)}
		require.NoError(t, repo.Create(ctx, r), i)
	}
	n, err := repo.CountSince(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestReportRepositoryResolvePending(t *testing.T) {
	ctx := context.Background()
	db, caps := testDB(t)
	repo := NewReportRepository(db, caps)
	a, b := uuid.New(), uuid.New()

	require.NoError(t, repo.Create(ctx, &models.Report{ReporterID: &a, ContentType: "post", ContentID: "p1", ContentRef: "p1", Reason: "spam", Weight: 2}))
	require.NoError(t, repo.Create(ctx, &models.Report{ReporterID: &b, ContentType: "post", ContentID: "p1", ContentRef: "slug", Reason: "spam", Weight: 2}))
	require.NoError(t, repo.Create(ctx, &models.Report{ReporterID: &a, ContentType: "post", ContentID: "p2", ContentRef: "p2", Reason: "spam", Weight: 2}))

	actor := uuid.New()
	at := time.Now().UTC()
	rows, err := repo.ResolvePending(ctx, "post", []string{"p1", "slug"}, models.ReportConfirmed, &actor, "confirmed spam", at)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, models.ReportConfirmed, r.Status)
	}

	again, err := repo.ResolvePending(ctx, "post", []string{"p1"}, models.ReportRejected, nil, "", at)
	require.NoError(t, err)
	assert.Empty(t, again, "already resolved reports are left alone")

	pending, total, err := repo.List(ctx, ReportFilter{Status: models.ReportPending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.Equal(t, "p2", pending[0].ContentID)

	var stored models.Report
	require.NoError(t, db.Where("content_ref = ?", "slug").First(&stored).Error)
	require.NotNil(t, stored.ResolvedBy)
	assert.Equal(t, actor, *stored.ResolvedBy)
	assert.Equal(t, "confirmed spam", stored.ResolutionNote)
}

func TestReportRepositoryMissingTable(t *testing.T) {
	ctx := context.Background()
	db, _ := testDB(t)
	repo := NewReportRepository(db, database.StaticCapabilities())

	require.NoError(t, repo.Create(ctx, &models.Report{ContentType: "post", ContentID: "x", ContentRef: "x", Reason: "spam"}))
	n, err := repo.CountSince(ctx, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, n)

	var stored int64
	require.NoError(t, db.Model(&models.Report{}).Count(&stored).Error)
	assert.Zero(t, stored, "no write without the capability")
}

func TestReportRepositoryWithoutContentRef(t *testing.T) {
	ctx := context.Background()
	db, _ := testDB(t)
	require.NoError(t, db.Migrator().DropIndex(&models.Report{}, "idx_reports_content_ref"))
	require.NoError(t, db.Migrator().DropColumn(&models.Report{}, "content_ref"))
	caps := database.ProbeCapabilities(db)
	require.False(t, caps.Supports("reports.content_ref"))

	repo := NewReportRepository(db, caps)
	reporter := uuid.New()
	require.NoError(t, repo.Create(ctx, &models.Report{ReporterID: &reporter, ContentType: "post", ContentID: "p1", ContentRef: "my-slug", Reason: "spam", Weight: 3}))

	dup, err := repo.HasDuplicate(ctx, reporter, "post", []string{"p1", "my-slug"})
	require.NoError(t, err)
	assert.True(t, dup)

	dup, err = repo.HasDuplicate(ctx, reporter, "post", []string{"my-slug"})
	require.NoError(t, err)
	assert.False(t, dup, "the raw reference is not stored")

	rows, err := repo.ListForContent(ctx, "post", []string{"p1"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	resolved, err := repo.ResolvePending(ctx, "post", []string{"p1"}, models.ReportConfirmed, nil, "", time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
}
