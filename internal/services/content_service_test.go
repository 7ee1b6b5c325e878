package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

const gardenBody = `Our community garden started three years ago with a handful of neighbors and a borrowed shovel.
Today it feeds twelve families through the summer, hosts a weekly workshop about composting, and gives local kids a place to learn how tomatoes actually grow.
This post explains how we organized the volunteer schedule and what we would change next season.`

const spamBody = "AMAZING DEAL!!!!!!! CLICK HERE NOWWWWW https://a.example/x https://b.example/y https://c.example/z https://d.example/w"

func TestCreatePostApprovedWhenClean(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, models.RoleUser)

	resp, err := f.content.CreatePost(context.Background(), author.ID, &dto.CreatePostRequest{
		Title: "What we learned running a garden",
		Body:  gardenBody,
	})
	require.NoError(t, err)
	post := resp.Post
	assert.Equal(t, models.KindPost, post.Kind)
	assert.Equal(t, models.ModerationApproved, post.ModerationStatus)
	assert.False(t, post.QualityFlagged)
	assert.True(t, strings.HasPrefix(post.Slug, "what-we-learned-running-a-garden-"))
	require.NotNil(t, post.PublishedAt)

	bySlug, err := f.content.GetPost(context.Background(), post.Slug)
	require.NoError(t, err)
	assert.Equal(t, post.ID, bySlug.ID)
}

func TestCreatePostFlaggedStartsPending(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, models.RoleUser)

	resp, err := f.content.CreatePost(context.Background(), author.ID, &dto.CreatePostRequest{
		Kind:  "question",
		Title: "BUY NOW",
		Body:  spamBody,
	})
	require.NoError(t, err)
	assert.Equal(t, models.KindQuestion, resp.Post.Kind)
	assert.True(t, resp.Analysis.Flagged)
	assert.True(t, resp.Post.QualityFlagged)
	assert.Equal(t, models.ModerationPending, resp.Post.ModerationStatus)
	assert.Equal(t, resp.Analysis.Score, resp.Post.QualityScore)
}

func TestCreatePostValidation(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	ctx := context.Background()

	_, err := f.content.CreatePost(ctx, id, &dto.CreatePostRequest{Kind: "poll", Title: "x", Body: "y"})
	assert.ErrorIs(t, err, ErrInvalidKind)
	_, err = f.content.CreatePost(ctx, id, &dto.CreatePostRequest{Title: "  ", Body: "y"})
	assert.ErrorIs(t, err, ErrTitleRequired)
	_, err = f.content.CreatePost(ctx, id, &dto.CreatePostRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrBodyRequired)
}

func TestGetPostHidesHiddenContent(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, models.RoleUser)
	resp, err := f.content.CreatePost(context.Background(), author.ID, &dto.CreatePostRequest{Title: "Garden", Body: gardenBody})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.Post{}).Where("id = ?", resp.Post.ID).Update("hidden", true).Error)
	_, err = f.content.GetPost(context.Background(), resp.Post.ID.String())
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = f.content.GetPost(context.Background(), "no-such-slug")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestEngagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, models.RoleUser)
	reader := f.user(t, models.RoleUser)
	resp, err := f.content.CreatePost(ctx, author.ID, &dto.CreatePostRequest{Title: "Garden", Body: gardenBody})
	require.NoError(t, err)
	ref := resp.Post.Slug

	comment, err := f.content.AddComment(ctx, reader.ID, ref, &dto.CreateCommentRequest{Body: "Thanks for sharing the schedule, very useful."})
	require.NoError(t, err)
	assert.Equal(t, resp.Post.ID, comment.Comment.PostID)
	assert.Equal(t, models.ModerationApproved, comment.Comment.ModerationStatus)

	review, err := f.content.AddReview(ctx, reader.ID, ref, &dto.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)
	assert.Nil(t, review.Analysis, "rating without text is not analyzed")
	_, err = f.content.AddReview(ctx, reader.ID, ref, &dto.CreateReviewRequest{Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidRating)

	require.NoError(t, f.content.Vote(ctx, reader.ID, ref, 1))
	require.NoError(t, f.content.Vote(ctx, reader.ID, ref, -1))
	var votes []models.Vote
	require.NoError(t, f.db.Find(&votes).Error)
	require.Len(t, votes, 1)
	assert.Equal(t, -1, votes[0].Value)
	require.NoError(t, f.content.Vote(ctx, reader.ID, ref, 0))
	require.NoError(t, f.db.Find(&votes).Error)
	assert.Empty(t, votes)
	assert.ErrorIs(t, f.content.Vote(ctx, reader.ID, ref, 2), ErrInvalidVote)

	saved, err := f.content.ToggleSave(ctx, reader.ID, ref)
	require.NoError(t, err)
	assert.True(t, saved)
	saved, err = f.content.ToggleSave(ctx, reader.ID, ref)
	require.NoError(t, err)
	assert.False(t, saved)

	following, err := f.content.ToggleFollow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, following)
	following, err = f.content.ToggleFollow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, following)
	_, err = f.content.ToggleFollow(ctx, reader.ID, reader.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)
	_, err = f.content.ToggleFollow(ctx, reader.ID, uuid.New())
	assert.ErrorIs(t, err, ErrUserMissing)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "creme-brulee-a-how-to", Slugify("Crème Brûlée: A How-To!", "post"))
	assert.Equal(t, "post", Slugify("!!!", "post"))
	assert.Equal(t, "a-b", Slugify("  a   b  ", "post"))
	assert.LessOrEqual(t, len(Slugify(strings.Repeat("word ", 60), "post")), maxSlugBase)
}
