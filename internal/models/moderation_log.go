package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionAutoHide       = "auto_hide"
	ActionResolveReports = "resolve_reports"
)

// ModerationLog is the append-only record of every moderation decision.
type ModerationLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Actor       string         `gorm:"size:100;not null;index" json:"actor"`
	ActorID     *uuid.UUID     `gorm:"type:uuid" json:"actor_id,omitempty"`
	Action      string         `gorm:"size:50;not null;index" json:"action"`
	ContentType string         `gorm:"size:20;not null" json:"content_type"`
	ContentID   string         `gorm:"size:255;not null;index" json:"content_id"`
	ContentURL  string         `gorm:"size:500" json:"content_url,omitempty"`
	Reason      string         `gorm:"size:1000" json:"reason,omitempty"`
	Metrics     datatypes.JSON `gorm:"type:jsonb" json:"metrics"`
	IP          string         `gorm:"size:64" json:"ip,omitempty"`
	Location    string         `gorm:"size:120" json:"location,omitempty"`
	UserAgent   string         `gorm:"size:500" json:"user_agent,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (l *ModerationLog) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
