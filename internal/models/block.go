package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Block records that BlockerID no longer wants to see BlockedID. Blocks have
// no effect on reports or trust.
type Block struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BlockerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair,priority:1" json:"blocker_id"`
	BlockedID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair,priority:2;index" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Block) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
