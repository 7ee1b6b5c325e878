package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow, Vote and Save feed the reporter activity score.

type Follow struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FollowerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair,priority:1" json:"follower_id"`
	FolloweeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair,priority:2" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

type Vote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_post,priority:1" json:"user_id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_post,priority:2" json:"post_id"`
	Value     int       `gorm:"not null" json:"value"` // +1 or -1
	CreatedAt time.Time `json:"created_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

type Save struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saves_user_post,priority:1" json:"user_id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saves_user_post,priority:2" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Save) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
