package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/repository"
)

func TestModerationServiceReportAndResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, models.RoleUser)
	reporter := f.user(t, models.RoleUser)
	mod := f.user(t, models.RoleModerator)
	post, err := f.content.CreatePost(ctx, author.ID, &dto.CreatePostRequest{Title: "Garden", Body: gardenBody})
	require.NoError(t, err)

	res, err := f.moderation.CreateReport(ctx, &reporter.ID, &dto.CreateReportRequest{
		ContentType: "POST",
		ContentID:   post.Post.Slug,
		Reason:      "spam",
	}, moderation.RequestMeta{IP: "198.51.100.7"})
	require.NoError(t, err)
	assert.True(t, res.OK)
	require.NotNil(t, res.ReportID)
	assert.Equal(t, 3.0, res.ReportWeight)

	anon, err := f.moderation.CreateReport(ctx, nil, &dto.CreateReportRequest{ContentType: "post", ContentID: post.Post.ID.String(), Reason: "off-topic"}, moderation.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, anon.ReportWeight)

	pending, total, err := f.moderation.ListReports(ctx, repository.ReportFilter{Status: models.ReportPending})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, pending, 2)
	_, _, err = f.moderation.ListReports(ctx, repository.ReportFilter{Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	inspection, err := f.moderation.InspectContent(ctx, "post", post.Post.Slug)
	require.NoError(t, err)
	require.NotNil(t, inspection.Score)
	assert.InDelta(t, 4.0, inspection.Score.WeightTotal, 1e-9)

	resolved, err := f.moderation.ResolveReports(ctx, &mod.ID, &dto.ResolveReportsRequest{
		ContentType: "post",
		ContentID:   post.Post.ID.String(),
		Resolution:  "Rejected",
		Reason:      "not spam",
	}, moderation.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 2, resolved.Resolved)
	assert.Equal(t, 1, resolved.Reporters, "anonymous reports have no reporter to update")

	logs, total, err := f.moderation.ListLogs(ctx, repository.AuditFilter{Action: models.ActionResolveReports})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "user:"+mod.ID.String(), logs[0].Actor)

	profile, err := f.moderation.Reporter(ctx, reporter.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.Profile)
	assert.Equal(t, 1, profile.Profile.ReportsRejected)
	assert.Less(t, profile.Weight.ReportWeight, 3.0, "a rejected report lowers the next weight")

	_, err = f.moderation.Reporter(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestModerationServiceBlocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.user(t, models.RoleUser), f.user(t, models.RoleUser)

	assert.ErrorIs(t, f.moderation.BlockUser(ctx, a.ID, a.ID), ErrSelfBlock)
	require.NoError(t, f.moderation.BlockUser(ctx, a.ID, b.ID))
	assert.ErrorIs(t, f.moderation.BlockUser(ctx, a.ID, b.ID), ErrAlreadyBlocked)

	ids, err := f.moderation.BlockedIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID}, ids)

	require.NoError(t, f.moderation.UnblockUser(ctx, a.ID, b.ID))
	ids, err = f.moderation.BlockedIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
