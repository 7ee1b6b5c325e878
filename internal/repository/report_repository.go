package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
)

type ReportRepository struct {
	db   *gorm.DB
	caps moderation.Capabilities
}

var _ moderation.ReportStore = (*ReportRepository)(nil)

func NewReportRepository(db *gorm.DB, caps moderation.Capabilities) *ReportRepository {
	return &ReportRepository{db: db, caps: caps}
}

func (r *ReportRepository) available() bool {
	return r.caps.Supports(database.TableReports)
}

func (r *ReportRepository) hasContentRef() bool {
	return r.caps.Supports(database.TableReports + ".content_ref")
}

// contentScope matches reports whose canonical id or raw reference is one of
// identifiers. Without the content_ref column only the canonical id is used.
func contentScope(contentType string, identifiers []string, withRef bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !withRef {
			return db.Where("content_type = ? AND content_id IN ?", contentType, identifiers)
		}
		return db.Where("content_type = ? AND (content_id IN ? OR content_ref IN ?)", contentType, identifiers, identifiers)
	}
}

func (r *ReportRepository) HasDuplicate(ctx context.Context, reporterID uuid.UUID, contentType string, identifiers []string) (bool, error) {
	if !r.available() || len(identifiers) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Scopes(contentScope(contentType, identifiers, r.hasContentRef())).
		Where("reporter_id = ?", reporterID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if !r.available() {
		return nil
	}
	q := r.db.WithContext(ctx)
	if !r.caps.Supports(database.TableReports + ".weight") {
		q = q.Omit("weight")
	}
	if !r.caps.Supports(database.TableReports + ".metadata") {
		q = q.Omit("metadata")
	}
	if !r.hasContentRef() {
		q = q.Omit("content_ref")
	}
	err := q.Create(report).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return moderation.ErrDuplicateReport
	}
	return err
}

func (r *ReportRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	if !r.available() {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *ReportRepository) ListForContent(ctx context.Context, contentType string, identifiers []string) ([]models.Report, error) {
	if !r.available() || len(identifiers) == 0 {
		return nil, nil
	}
	var reports []models.Report
	err := r.db.WithContext(ctx).
		Scopes(contentScope(contentType, identifiers, r.hasContentRef())).
		Order("created_at ASC, id ASC").
		Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) ResolvePending(ctx context.Context, contentType string, identifiers []string, status string, resolvedBy *uuid.UUID, note string, at time.Time) ([]models.Report, error) {
	if !r.available() || len(identifiers) == 0 {
		return nil, nil
	}
	var pending []models.Report
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(contentScope(contentType, identifiers, r.hasContentRef())).
			Where("status = ?", models.ReportPending).
			Order("created_at ASC, id ASC").
			Find(&pending).Error; err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, len(pending))
		for i := range pending {
			ids[i] = pending[i].ID
		}
		return tx.Model(&models.Report{}).
			Where("id IN ? AND status = ?", ids, models.ReportPending).
			Updates(map[string]interface{}{
				"status":          status,
				"resolved_at":     at,
				"resolved_by":     resolvedBy,
				"resolution_note": note,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	for i := range pending {
		pending[i].Status = status
		pending[i].ResolvedAt = &at
		pending[i].ResolvedBy = resolvedBy
		pending[i].ResolutionNote = note
	}
	return pending, nil
}

// ReportFilter narrows the admin report listing.
type ReportFilter struct {
	Status      string
	ContentType string
	ReporterID  *uuid.UUID
	Limit       int
	Offset      int
}

func (r *ReportRepository) List(ctx context.Context, f ReportFilter) ([]models.Report, int64, error) {
	if !r.available() {
		return []models.Report{}, 0, nil
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	q := r.db.WithContext(ctx).Model(&models.Report{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ContentType != "" {
		q = q.Where("content_type = ?", f.ContentType)
	}
	if f.ReporterID != nil {
		q = q.Where("reporter_id = ?", *f.ReporterID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reports []models.Report
	err := q.Order("created_at DESC, id DESC").Offset(f.Offset).Limit(f.Limit).Find(&reports).Error
	return reports, total, err
}
