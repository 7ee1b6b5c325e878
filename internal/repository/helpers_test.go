package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

func testDB(t *testing.T) (*gorm.DB, *database.Capabilities) {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db, database.ProbeCapabilities(db)
}

func createUser(t *testing.T, db *gorm.DB, role string, created time.Time) *models.User {
	t.Helper()
	u := &models.User{
		Username:  "user-" + uuid.NewString()[:8],
		Email:     uuid.NewString() + "@example.com",
		Password:  "x",
		Role:      role,
		CreatedAt: created,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createPost(t *testing.T, db *gorm.DB, kind string, author uuid.UUID, slug string) *models.Post {
	t.Helper()
	p := &models.Post{
		Kind:             kind,
		AuthorID:         author,
		Slug:             slug,
		Title:            "Title of " + slug,
		Body:             "body",
		Status:           models.PostStatusPublished,
		ModerationStatus: models.ModerationApproved,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
