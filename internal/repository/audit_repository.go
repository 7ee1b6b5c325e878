package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
)

// AuditRepository reads and appends moderation log entries. Entries are never
// updated or deleted.
type AuditRepository struct {
	db   *gorm.DB
	caps moderation.Capabilities
}

var _ moderation.AuditStore = (*AuditRepository)(nil)

func NewAuditRepository(db *gorm.DB, caps moderation.Capabilities) *AuditRepository {
	return &AuditRepository{db: db, caps: caps}
}

func (r *AuditRepository) Append(ctx context.Context, entry *models.ModerationLog) error {
	if !r.caps.Supports(database.TableModerationLogs) {
		return nil
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

type AuditFilter struct {
	Action      string
	ContentType string
	ContentID   string
	Limit       int
	Offset      int
}

func (r *AuditRepository) List(ctx context.Context, f AuditFilter) ([]models.ModerationLog, int64, error) {
	if !r.caps.Supports(database.TableModerationLogs) {
		return []models.ModerationLog{}, 0, nil
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	q := r.db.WithContext(ctx).Model(&models.ModerationLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.ContentType != "" {
		q = q.Where("content_type = ?", f.ContentType)
	}
	if f.ContentID != "" {
		q = q.Where("content_id = ?", f.ContentID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var entries []models.ModerationLog
	err := q.Order("created_at DESC, id DESC").Offset(f.Offset).Limit(f.Limit).Find(&entries).Error
	return entries, total, err
}
