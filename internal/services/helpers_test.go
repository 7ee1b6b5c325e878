package services

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/cachestore"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/textanalysis"
)

type fixture struct {
	db         *gorm.DB
	cfg        *config.Config
	auth       *AuthService
	content    *ContentService
	moderation *ModerationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "services.sqlite"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
		SiteURL:          "https://community.example",
		Moderation:       config.DefaultModeration(),
	}
	caps := database.ProbeCapabilities(db)
	reports := repository.NewReportRepository(db, caps)
	profiles := repository.NewProfileRepository(db, caps)
	audit := repository.NewAuditRepository(db, caps)
	engine := moderation.NewEngine(cfg.Moderation, moderation.Deps{
		Caps:     caps,
		Reports:  reports,
		Scores:   repository.NewScoreRepository(db, caps),
		Profiles: profiles,
		Users:    repository.NewUserRepository(db, caps),
		Activity: repository.NewActivityRepository(db, caps),
		Content:  repository.NewContentRepository(db, caps, cfg.SiteURL),
		Audit:    audit,
		Cache:    cachestore.NewMemCacheStore(16, time.Minute),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return &fixture{
		db:         db,
		cfg:        cfg,
		auth:       NewAuthService(db, cfg),
		content:    NewContentService(db, textanalysis.New(cfg.Moderation.Text)),
		moderation: NewModerationService(db, engine, reports, profiles, audit),
	}
}

func (f *fixture) user(t *testing.T, role string) *models.User {
	t.Helper()
	u := &models.User{
		Username: "u" + uuid.NewString()[:12],
		Email:    uuid.NewString() + "@example.com",
		Password: "x",
		Role:     role,
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}
