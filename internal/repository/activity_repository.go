package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
)

type ActivityRepository struct {
	db   *gorm.DB
	caps moderation.Capabilities
}

var _ moderation.ActivityStore = (*ActivityRepository)(nil)

func NewActivityRepository(db *gorm.DB, caps moderation.Capabilities) *ActivityRepository {
	return &ActivityRepository{db: db, caps: caps}
}

type activityQuery struct {
	action string
	table  string
	build  func(db *gorm.DB, userID uuid.UUID) *gorm.DB
}

var activityQueries = []activityQuery{
	{config.ActionPosts, database.TablePosts, func(db *gorm.DB, id uuid.UUID) *gorm.DB {
		return db.Model(&models.Post{}).Where("author_id = ? AND kind = ? AND status = ?", id, models.KindPost, models.PostStatusPublished)
	}},
	{config.ActionQuestions, database.TablePosts, func(db *gorm.DB, id uuid.UUID) *gorm.DB {
		return db.Model(&models.Post{}).Where("author_id = ? AND kind = ? AND status = ?", id, models.KindQuestion, models.PostStatusPublished)
	}},
	{config.ActionComments, database.TableComments, func(db *gorm.DB, id uuid.UUID) *gorm.DB {
		return db.Model(&models.Comment{}).Where("author_id = ?", id)
	}},
	{config.ActionReviews, database.TableReviews, func(db *gorm.DB, id uuid.UUID) *gorm.DB {
		return db.Model(&models.Review{}).Where("author_id = ?", id)
	}},
	{config.ActionFollows, database.TableFollows, func(db *gorm.DB, id uuid.UUID) *gorm.DB {
		return db.Model(&models.Follow{}).Where("follower_id = ?", id)
	}},
	{config.ActionUpvotes, database.TableVotes, func(db *gorm.DB, id uuid.UUID) *gorm.DB {
		return db.Model(&models.Vote{}).Where("user_id = ? AND value > 0", id)
	}},
	{config.ActionSaves, database.TableSaves, func(db *gorm.DB, id uuid.UUID) *gorm.DB {
		return db.Model(&models.Save{}).Where("user_id = ?", id)
	}},
}

// CountActions counts the user's lifetime actions. Actions whose table does
// not exist count as zero.
func (r *ActivityRepository) CountActions(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	counts := make(map[string]int64, len(activityQueries))
	db := r.db.WithContext(ctx)
	for _, q := range activityQueries {
		if !r.caps.Supports(q.table) {
			counts[q.action] = 0
			continue
		}
		var n int64
		if err := q.build(db, userID).Count(&n).Error; err != nil {
			return counts, err
		}
		counts[q.action] = n
	}
	return counts, nil
}
