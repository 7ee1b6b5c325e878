package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/repository"
)

var (
	ErrAlreadyBlocked = errors.New("user already blocked")
	ErrSelfBlock      = errors.New("cannot block yourself")
	ErrInvalidStatus  = errors.New("status must be pending, confirmed, rejected or auto_hidden")
)

// ModerationService is the HTTP-facing side of the moderation engine: report
// intake, moderator decisions and the read-only admin views.
type ModerationService struct {
	db       *gorm.DB
	engine   *moderation.Engine
	reports  *repository.ReportRepository
	profiles *repository.ProfileRepository
	audit    *repository.AuditRepository
}

func NewModerationService(db *gorm.DB, engine *moderation.Engine, reports *repository.ReportRepository, profiles *repository.ProfileRepository, audit *repository.AuditRepository) *ModerationService {
	return &ModerationService{
		db:       db,
		engine:   engine,
		reports:  reports,
		profiles: profiles,
		audit:    audit,
	}
}

func (s *ModerationService) CreateReport(ctx context.Context, reporterID *uuid.UUID, req *dto.CreateReportRequest, meta moderation.RequestMeta) (moderation.SubmitResult, error) {
	return s.engine.SubmitReport(ctx, moderation.ReportInput{
		ReporterID:  reporterID,
		ContentType: strings.ToLower(strings.TrimSpace(req.ContentType)),
		ContentRef:  req.ContentID,
		Reason:      req.Reason,
		Details:     req.Details,
		ContentURL:  req.ContentURL,
		Meta:        meta,
	})
}

func (s *ModerationService) ResolveReports(ctx context.Context, actorID *uuid.UUID, req *dto.ResolveReportsRequest, meta moderation.RequestMeta) (moderation.ResolveResult, error) {
	return s.engine.ResolveReports(ctx, moderation.ResolveInput{
		ContentType: strings.ToLower(strings.TrimSpace(req.ContentType)),
		ContentRef:  req.ContentID,
		Resolution:  strings.ToLower(strings.TrimSpace(req.Resolution)),
		Action:      strings.ToLower(strings.TrimSpace(req.Action)),
		Reason:      strings.TrimSpace(req.Reason),
		ActorID:     actorID,
		Meta:        meta,
	})
}

func (s *ModerationService) ListReports(ctx context.Context, f repository.ReportFilter) ([]models.Report, int64, error) {
	switch f.Status {
	case "", models.ReportPending, models.ReportConfirmed, models.ReportRejected, models.ReportAutoHidden:
	default:
		return nil, 0, ErrInvalidStatus
	}
	return s.reports.List(ctx, f)
}

func (s *ModerationService) InspectContent(ctx context.Context, contentType, ref string) (*moderation.Inspection, error) {
	return s.engine.Inspect(ctx, contentType, ref)
}

// Reporter returns the stored profile of userID next to the weight a report
// from them would carry right now.
func (s *ModerationService) Reporter(ctx context.Context, userID uuid.UUID) (*dto.ReporterResponse, error) {
	weight, err := s.engine.Trust().Preview(ctx, userID)
	if err != nil {
		return nil, err
	}
	if weight == nil {
		return nil, ErrUserNotFound
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load reporter profile: %w", err)
	}
	return &dto.ReporterResponse{UserID: userID, Profile: profile, Weight: *weight}, nil
}

func (s *ModerationService) ListLogs(ctx context.Context, f repository.AuditFilter) ([]models.ModerationLog, int64, error) {
	return s.audit.List(ctx, f)
}

func (s *ModerationService) BlockUser(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}
	err := s.db.WithContext(ctx).Create(&models.Block{BlockerID: blockerID, BlockedID: blockedID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyBlocked
	}
	return err
}

func (s *ModerationService) UnblockUser(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
}

func (s *ModerationService) BlockedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Block{}).
		Where("blocker_id = ?", userID).
		Pluck("blocked_id", &ids).Error
	return ids, err
}
