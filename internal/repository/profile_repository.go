package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
)

var outcomeColumns = map[string]string{
	models.ReportConfirmed:  "reports_confirmed",
	models.ReportRejected:   "reports_rejected",
	models.ReportAutoHidden: "reports_auto_hidden",
}

type ProfileRepository struct {
	db   *gorm.DB
	caps moderation.Capabilities
}

var _ moderation.ProfileStore = (*ProfileRepository)(nil)

func NewProfileRepository(db *gorm.DB, caps moderation.Capabilities) *ProfileRepository {
	return &ProfileRepository{db: db, caps: caps}
}

func (r *ProfileRepository) available() bool {
	return r.caps.Supports(database.TableReporterProfiles)
}

func (r *ProfileRepository) Get(ctx context.Context, userID uuid.UUID) (*models.ReporterProfile, error) {
	if !r.available() {
		return nil, nil
	}
	var p models.ReporterProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.ReporterProfile, error) {
	if !r.available() {
		return nil, nil
	}
	fresh := models.ReporterProfile{UserID: userID, TrustScore: 1, Weight: 1}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

// Save overwrites the derived columns. Counters are left alone so concurrent
// increments are not lost.
func (r *ProfileRepository) Save(ctx context.Context, p *models.ReporterProfile) error {
	if !r.available() {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.ReporterProfile{}).
		Where("user_id = ?", p.UserID).
		Updates(map[string]interface{}{
			"activity_points":  p.ActivityPoints,
			"trust_score":      p.TrustScore,
			"weight":           p.Weight,
			"last_computed_at": p.LastComputedAt,
			"metadata":         p.Metadata,
		}).Error
}

func (r *ProfileRepository) IncrementSubmitted(ctx context.Context, userID uuid.UUID) error {
	return r.increment(ctx, userID, "reports_submitted", 1)
}

func (r *ProfileRepository) IncrementOutcome(ctx context.Context, userID uuid.UUID, resolution string, n int) error {
	col, ok := outcomeColumns[resolution]
	if !ok {
		return fmt.Errorf("%w: %q", moderation.ErrInvalidResolution, resolution)
	}
	return r.increment(ctx, userID, col, n)
}

func (r *ProfileRepository) increment(ctx context.Context, userID uuid.UUID, column string, n int) error {
	if !r.available() || n == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.ReporterProfile{}).
		Where("user_id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + ?", n)).Error
}
