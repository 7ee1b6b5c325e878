package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	KindPost     = "post"
	KindQuestion = "question"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Moderation states shared by every user-generated content table.
const (
	ModerationPending  = "pending"
	ModerationApproved = "approved"
	ModerationHidden   = "hidden"
	ModerationRejected = "rejected"
)

// Post holds both articles and questions; Kind tells them apart.
type Post struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Kind             string         `gorm:"size:20;not null;default:'post';index" json:"kind"`
	AuthorID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Slug             string         `gorm:"size:160;not null;uniqueIndex" json:"slug"`
	Title            string         `gorm:"size:200;not null" json:"title"`
	Subtitle         string         `gorm:"size:300" json:"subtitle,omitempty"`
	Body             string         `gorm:"type:text;not null" json:"body"`
	Status           string         `gorm:"size:20;not null;default:'published'" json:"status"`
	ModerationStatus string         `gorm:"size:20;not null;default:'approved';index" json:"moderation_status"`
	Hidden           bool           `gorm:"default:false;index" json:"hidden"`
	QualityScore     float64        `gorm:"default:0" json:"quality_score"`
	QualityFlagged   bool           `gorm:"default:false" json:"quality_flagged"`
	PublishedAt      *time.Time     `json:"published_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

type Comment struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PostID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"post_id"`
	AuthorID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Body             string         `gorm:"type:text;not null" json:"body"`
	ModerationStatus string         `gorm:"size:20;not null;default:'approved'" json:"moderation_status"`
	Hidden           bool           `gorm:"default:false" json:"hidden"`
	QualityScore     float64        `gorm:"default:0" json:"quality_score"`
	QualityFlagged   bool           `gorm:"default:false" json:"quality_flagged"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type Review struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PostID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"post_id"`
	AuthorID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Rating           int            `gorm:"not null" json:"rating"`
	Body             string         `gorm:"type:text" json:"body"`
	ModerationStatus string         `gorm:"size:20;not null;default:'approved'" json:"moderation_status"`
	Hidden           bool           `gorm:"default:false" json:"hidden"`
	QualityScore     float64        `gorm:"default:0" json:"quality_score"`
	QualityFlagged   bool           `gorm:"default:false" json:"quality_flagged"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
