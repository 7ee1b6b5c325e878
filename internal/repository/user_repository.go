package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
)

type UserRepository struct {
	db   *gorm.DB
	caps moderation.Capabilities
}

var _ moderation.UserStore = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB, caps moderation.Capabilities) *UserRepository {
	return &UserRepository{db: db, caps: caps}
}

func (r *UserRepository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if !r.caps.Supports(database.TableUsers) {
		return nil, nil
	}
	var user models.User
	err := r.db.WithContext(ctx).Select("id", "role", "created_at").Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
