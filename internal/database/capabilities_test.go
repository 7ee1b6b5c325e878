package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

func TestProbeCapabilitiesFullSchema(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	caps := ProbeCapabilities(db)
	for _, name := range []string{TableUsers, TablePosts, TableReports, TableReporterProfiles, TableContentScores, TableModerationLogs} {
		assert.True(t, caps.Supports(name), name)
	}
	assert.True(t, caps.Supports("reports.weight"))
	assert.True(t, caps.Supports("posts.hidden"))
	assert.False(t, caps.Supports("reports.nope"))
}

func TestProbeCapabilitiesPartialSchema(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db, &models.User{}, &models.Post{}))

	caps := ProbeCapabilities(db)
	assert.True(t, caps.Supports(TableUsers))
	assert.True(t, caps.Supports(TablePosts))
	assert.False(t, caps.Supports(TableReports))
	assert.False(t, caps.Supports("reports.weight"))
	assert.False(t, caps.Supports(TableContentScores))
}

func TestStaticCapabilities(t *testing.T) {
	caps := StaticCapabilities(TableReports, "reports.weight")
	assert.True(t, caps.Supports(TableReports))
	assert.True(t, caps.Supports("reports.weight"))
	assert.False(t, caps.Supports(TablePosts))

	var none *Capabilities
	assert.False(t, none.Supports(TableReports))
}
