package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ReportPending    = "pending"
	ReportConfirmed  = "confirmed"
	ReportRejected   = "rejected"
	ReportAutoHidden = "auto_hidden"
)

// Report is one user report against a piece of content. Weight is frozen at
// creation; later changes to the reporter's trust never rewrite it.
// Rows are never deleted so the table doubles as the audit trail.
type Report struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID     *uuid.UUID     `gorm:"type:uuid;uniqueIndex:idx_reports_reporter_content,priority:1" json:"reporter_id,omitempty"`
	ContentType    string         `gorm:"size:20;not null;uniqueIndex:idx_reports_reporter_content,priority:2;index:idx_reports_content,priority:1" json:"content_type"`
	ContentID      string         `gorm:"size:255;not null;uniqueIndex:idx_reports_reporter_content,priority:3;index:idx_reports_content,priority:2" json:"content_id"`
	ContentRef     string         `gorm:"size:255;not null;index" json:"content_ref"`
	ContentURL     string         `gorm:"size:500" json:"content_url,omitempty"`
	Reason         string         `gorm:"size:100;not null" json:"reason"`
	Details        string         `gorm:"type:text" json:"details,omitempty"`
	Weight         float64        `gorm:"not null;default:1" json:"weight"`
	Status         string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty"`
	ResolvedBy     *uuid.UUID     `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolutionNote string         `gorm:"size:1000" json:"resolution_note,omitempty"`
	Metadata       datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	if r.Status == "" {
		r.Status = ReportPending
	}
	return nil
}

// ReporterProfile caches the derived trust of a user who has filed reports.
// TrustScore and Weight are recomputed from the counters, never incremented.
type ReporterProfile struct {
	UserID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	ReportsSubmitted  int            `gorm:"not null;default:0" json:"reports_submitted"`
	ReportsConfirmed  int            `gorm:"not null;default:0" json:"reports_confirmed"`
	ReportsRejected   int            `gorm:"not null;default:0" json:"reports_rejected"`
	ReportsAutoHidden int            `gorm:"not null;default:0" json:"reports_auto_hidden"`
	ActivityPoints    float64        `gorm:"not null;default:0" json:"activity_points"`
	TrustScore        float64        `gorm:"not null;default:1" json:"trust_score"`
	Weight            float64        `gorm:"not null;default:1" json:"weight"`
	LastComputedAt    *time.Time     `json:"last_computed_at,omitempty"`
	Metadata          datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Resolved is the number of this reporter's reports that reached an outcome.
func (p *ReporterProfile) Resolved() int {
	return p.ReportsConfirmed + p.ReportsRejected + p.ReportsAutoHidden
}

// ContentScore is the aggregate of all reports against one content item.
// It is rebuilt from the reports table on every trigger.
type ContentScore struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ContentType      string         `gorm:"size:20;not null;uniqueIndex:idx_content_scores_content,priority:1" json:"content_type"`
	ContentID        string         `gorm:"size:255;not null;uniqueIndex:idx_content_scores_content,priority:2" json:"content_id"`
	ReportsCount     int            `gorm:"not null;default:0" json:"reports_count"`
	ReportersCount   int            `gorm:"not null;default:0" json:"reporters_count"`
	WeightTotal      float64        `gorm:"not null;default:0" json:"weight_total"`
	WeightThreshold  float64        `gorm:"not null;default:0" json:"weight_threshold"`
	SiteScale        float64        `gorm:"not null;default:1" json:"site_scale"`
	LastReportAt     *time.Time     `json:"last_report_at,omitempty"`
	LastRecomputedAt time.Time      `json:"last_recomputed_at"`
	AutoHiddenAt     *time.Time     `json:"auto_hidden_at,omitempty"`
	Metadata         datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (s *ContentScore) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
