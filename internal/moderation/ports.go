package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

var (
	ErrInvalidContentType = errors.New("invalid content type")
	ErrReasonRequired     = errors.New("reason is required")
	ErrInvalidResolution  = errors.New("resolution must be confirmed or rejected")
	ErrInvalidAction      = errors.New("action must be none, hide or restore")
	ErrContentNotFound    = errors.New("content not found")

	// ErrDuplicateReport is returned by ReportStore.Create when the unique
	// (reporter, content type, content id) index rejects the insert.
	ErrDuplicateReport = errors.New("duplicate report")
)

// Capabilities reports which tables ("reports") and columns
// ("reports.weight") exist in the backing store.
type Capabilities interface {
	Supports(name string) bool
}

// ContentItem is a resolved piece of reportable content.
type ContentItem struct {
	Type             string
	ID               string
	Identifiers      []string
	Slug             string
	Title            string
	AuthorID         *uuid.UUID
	Hidden           bool
	ModerationStatus string
	URL              string
}

type ReportStore interface {
	HasDuplicate(ctx context.Context, reporterID uuid.UUID, contentType string, identifiers []string) (bool, error)
	Create(ctx context.Context, report *models.Report) error
	CountSince(ctx context.Context, since time.Time) (int64, error)
	ListForContent(ctx context.Context, contentType string, identifiers []string) ([]models.Report, error)
	// ResolvePending moves every pending report against the content to status
	// and returns the rows it changed.
	ResolvePending(ctx context.Context, contentType string, identifiers []string, status string, resolvedBy *uuid.UUID, note string, at time.Time) ([]models.Report, error)
}

type ScoreStore interface {
	Upsert(ctx context.Context, score *models.ContentScore) error
	MarkAutoHidden(ctx context.Context, contentType, contentID string, at time.Time, threshold, siteScale float64) error
	Get(ctx context.Context, contentType, contentID string) (*models.ContentScore, error)
}

type ProfileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.ReporterProfile, error)
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.ReporterProfile, error)
	Save(ctx context.Context, profile *models.ReporterProfile) error
	IncrementSubmitted(ctx context.Context, userID uuid.UUID) error
	IncrementOutcome(ctx context.Context, userID uuid.UUID, resolution string, n int) error
}

type UserStore interface {
	// GetUser returns nil, nil when the user does not exist.
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type ActivityStore interface {
	// CountActions returns lifetime counts keyed by activity action name.
	CountActions(ctx context.Context, userID uuid.UUID) (map[string]int64, error)
}

type ContentStore interface {
	// Resolve returns nil, nil when ref matches nothing.
	Resolve(ctx context.Context, contentType, ref string) (*ContentItem, error)
	Hide(ctx context.Context, item *ContentItem) error
	Restore(ctx context.Context, item *ContentItem) error
}

type AuditStore interface {
	Append(ctx context.Context, entry *models.ModerationLog) error
}

// RequestMeta is caller supplied context copied onto moderation log entries.
type RequestMeta struct {
	IP        string
	Location  string
	UserAgent string
}
