package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

func TestActivityRepositoryCountActions(t *testing.T) {
	ctx := context.Background()
	db, caps := testDB(t)
	now := time.Now().UTC()
	u := createUser(t, db, models.RoleUser, now)
	other := createUser(t, db, models.RoleUser, now)

	p1 := createPost(t, db, models.KindPost, u.ID, "first")
	createPost(t, db, models.KindPost, u.ID, "second")
	createPost(t, db, models.KindQuestion, u.ID, "why")
	draft := &models.Post{Kind: models.KindPost, AuthorID: u.ID, Slug: "draft", Title: "d", Body: "d", Status: models.PostStatusDraft}
	require.NoError(t, db.Create(draft).Error)

	require.NoError(t, db.Create(&models.Comment{PostID: p1.ID, AuthorID: u.ID, Body: "nice"}).Error)
	require.NoError(t, db.Create(&models.Review{PostID: p1.ID, AuthorID: u.ID, Rating: 4}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: u.ID, FolloweeID: other.ID}).Error)
	require.NoError(t, db.Create(&models.Vote{UserID: u.ID, PostID: p1.ID, Value: 1}).Error)
	require.NoError(t, db.Create(&models.Save{UserID: u.ID, PostID: p1.ID}).Error)

	counts, err := NewActivityRepository(db, caps).CountActions(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[config.ActionPosts], "drafts do not count")
	assert.Equal(t, int64(1), counts[config.ActionQuestions])
	assert.Equal(t, int64(1), counts[config.ActionComments])
	assert.Equal(t, int64(1), counts[config.ActionReviews])
	assert.Equal(t, int64(1), counts[config.ActionFollows])
	assert.Equal(t, int64(1), counts[config.ActionUpvotes])
	assert.Equal(t, int64(1), counts[config.ActionSaves])

	// only posts available: everything else counts as zero
	partial := database.StaticCapabilities(database.TablePosts)
	counts, err = NewActivityRepository(db, partial).CountActions(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[config.ActionPosts])
	assert.Zero(t, counts[config.ActionComments])
	assert.Zero(t, counts[config.ActionSaves])
}
