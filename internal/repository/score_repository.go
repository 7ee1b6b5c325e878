package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
)

type ScoreRepository struct {
	db   *gorm.DB
	caps moderation.Capabilities
}

var _ moderation.ScoreStore = (*ScoreRepository)(nil)

func NewScoreRepository(db *gorm.DB, caps moderation.Capabilities) *ScoreRepository {
	return &ScoreRepository{db: db, caps: caps}
}

func (r *ScoreRepository) available() bool {
	return r.caps.Supports(database.TableContentScores)
}

// Upsert writes the aggregate columns of score. auto_hidden_at is only ever
// set through MarkAutoHidden.
func (r *ScoreRepository) Upsert(ctx context.Context, score *models.ContentScore) error {
	if !r.available() {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "content_type"}, {Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"reports_count", "reporters_count", "weight_total", "weight_threshold",
			"site_scale", "last_report_at", "last_recomputed_at", "metadata", "updated_at",
		}),
	}).Omit("auto_hidden_at").Create(score).Error
}

func (r *ScoreRepository) MarkAutoHidden(ctx context.Context, contentType, contentID string, at time.Time, threshold, siteScale float64) error {
	if !r.available() {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.ContentScore{}).
		Where("content_type = ? AND content_id = ?", contentType, contentID).
		Updates(map[string]interface{}{
			"auto_hidden_at":   at,
			"weight_threshold": threshold,
			"site_scale":       siteScale,
		}).Error
}

func (r *ScoreRepository) Get(ctx context.Context, contentType, contentID string) (*models.ContentScore, error) {
	if !r.available() {
		return nil, nil
	}
	var score models.ContentScore
	err := r.db.WithContext(ctx).
		Where("content_type = ? AND content_id = ?", contentType, contentID).
		First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}
