package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moderation.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultModerationIsValid(t *testing.T) {
	mod := DefaultModeration()
	require.NoError(t, mod.Validate())
	assert.Equal(t, 16.0, mod.AutoHide.BaseThreshold)
	assert.Equal(t, 3, mod.AutoHide.MinimumReports)
	assert.Equal(t, 1.1, mod.AutoHide.TypeMultiplier(ContentQuestion))
	assert.Equal(t, 1.0, mod.AutoHide.TypeMultiplier(ContentPost))
	assert.True(t, mod.AutoHide.Hideable(ContentPost))
	assert.False(t, mod.AutoHide.Hideable(ContentComment))
}

func TestLoadModerationOverlay(t *testing.T) {
	path := writeFile(t, `
[role_weights]
user = 2.5

[auto_hide]
base_threshold = 20.0
types = ["post", "question", "comment"]

[site_scale]
cache_seconds = 5

[text.profiles.post]
min_chars = 100
min_words = 10
score_threshold = 4.0
`)
	mod, err := LoadModeration(path)
	require.NoError(t, err)

	assert.Equal(t, 2.5, mod.RoleWeights["user"])
	assert.Equal(t, 6.0, mod.RoleWeights["moderator"], "untouched keys keep their defaults")
	assert.Equal(t, 20.0, mod.AutoHide.BaseThreshold)
	assert.Equal(t, 3, mod.AutoHide.MinimumReports)
	assert.True(t, mod.AutoHide.Hideable(ContentComment))
	assert.Equal(t, 30*time.Second, mod.SiteScale.CacheTTL(), "ttl is floored at 30s")
	assert.Equal(t, 100, mod.Text.Profile("post").MinChars)
	assert.Equal(t, 30, mod.Text.Profile("question").MinChars)
}

func TestLoadModerationPartialProfileKeepsDefaults(t *testing.T) {
	path := writeFile(t, `
[text.profiles.post]
min_chars = 100

[text.profiles.poll]
min_words = 2
`)
	mod, err := LoadModeration(path)
	require.NoError(t, err)

	post := mod.Text.Profile("post")
	assert.Equal(t, 100, post.MinChars)
	assert.Equal(t, 40, post.MinWords, "keys missing from the file keep their defaults")
	assert.Equal(t, 3.0, post.ScoreThreshold)

	poll := mod.Text.Profile("poll")
	assert.Equal(t, 2, poll.MinWords)
	assert.Equal(t, 20, poll.MinChars, "new profiles start from the default profile")
	assert.Equal(t, 2.5, poll.ScoreThreshold)
}

func TestLoadModerationMissingFile(t *testing.T) {
	mod, err := LoadModeration(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultModeration().Trust, mod.Trust)
}

func TestLoadModerationRejectsInvertedRanges(t *testing.T) {
	path := writeFile(t, `
[trust]
min_weight = 10.0
max_weight = 2.0

[site_scale]
min_scale = 3.0
max_scale = 1.0
window_days = 0
`)
	_, err := LoadModeration(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_weight/max_weight")
	assert.Contains(t, err.Error(), "min_scale/max_scale")
	assert.Contains(t, err.Error(), "window_days")
}

func TestLoadModerationBadSyntax(t *testing.T) {
	_, err := LoadModeration(writeFile(t, "[trust\nmin_trust = "))
	assert.Error(t, err)
}

func TestValidateUnknownAutoHideType(t *testing.T) {
	mod := DefaultModeration()
	mod.AutoHide.Types = []string{"poll"}
	mod.DefaultRole = "ghost"
	err := mod.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"poll"`)
	assert.Contains(t, err.Error(), `"ghost"`)
}
