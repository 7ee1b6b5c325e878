package dto

import (
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
)

type CreateReportRequest struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	Reason      string `json:"reason"`
	Details     string `json:"details"`
	ContentURL  string `json:"content_url"`
}

type ResolveReportsRequest struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	Resolution  string `json:"resolution"` // confirmed or rejected
	Action      string `json:"action"`     // none, hide or restore
	Reason      string `json:"reason"`
}

type AnalyzeRequest struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Body        string `json:"body"`
}

type PageResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// ReporterResponse pairs the stored profile with a freshly computed weight.
type ReporterResponse struct {
	UserID  uuid.UUID               `json:"user_id"`
	Profile *models.ReporterProfile `json:"profile,omitempty"`
	Weight  moderation.WeightResult `json:"weight"`
}

type BlockUserRequest struct {
	BlockedID uuid.UUID `json:"blocked_id"`
}
