package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

const testSecret = "test-secret"

func signed(t *testing.T, secret string, sub uuid.UUID, email string, exp time.Duration) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub.String(),
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(exp).Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, app *fiber.App, headers map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func whoami(c *fiber.Ctx) error {
	if id := OptionalUserID(c); id != nil {
		return c.SendString(id.String())
	}
	return c.SendString("anonymous")
}

func TestOptionalJWT(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := fiber.New()
	app.Get("/", OptionalJWT(cfg), whoami)

	status, body := do(t, app, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "anonymous", body)

	id := uuid.New()
	status, body = do(t, app, map[string]string{"Authorization": "Bearer " + signed(t, testSecret, id, "a@b.c", time.Hour)})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, id.String(), body)

	status, _ = do(t, app, map[string]string{"Authorization": "Bearer " + signed(t, "other", id, "a@b.c", time.Hour)})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, app, map[string]string{"Authorization": "Bearer " + signed(t, testSecret, id, "a@b.c", -time.Minute)})
	assert.Equal(t, http.StatusUnauthorized, status, "expired tokens are rejected")
}

func TestJWTProtectedRequiresToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := fiber.New()
	app.Get("/", JWTProtected(cfg), whoami)

	status, _ := do(t, app, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestModeratorRequired(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "mw.sqlite"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &models.User{}))

	mod := &models.User{Username: "mod", Email: "mod@example.com", Password: "x", Role: models.RoleModerator}
	plain := &models.User{Username: "plain", Email: "plain@example.com", Password: "x"}
	require.NoError(t, db.Create(mod).Error)
	require.NoError(t, db.Create(plain).Error)

	listed := uuid.New()
	cfg := &config.Config{
		JWTSecret:    testSecret,
		AdminToken:   "static-token",
		AdminUserIDs: listed.String(),
		AdminEmails:  "Boss@Example.com",
	}
	app := fiber.New()
	app.Get("/", OptionalJWT(cfg), ModeratorRequired(db, cfg), whoami)

	bearer := func(id uuid.UUID, email string) map[string]string {
		return map[string]string{"Authorization": "Bearer " + signed(t, testSecret, id, email, time.Hour)}
	}

	cases := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"no credentials", nil, http.StatusUnauthorized},
		{"static token", map[string]string{HeaderAdminToken: "static-token"}, http.StatusOK},
		{"wrong static token", map[string]string{HeaderAdminToken: "nope"}, http.StatusUnauthorized},
		{"moderator role", bearer(mod.ID, mod.Email), http.StatusOK},
		{"plain user", bearer(plain.ID, plain.Email), http.StatusForbidden},
		{"listed id", bearer(listed, "x@example.com"), http.StatusOK},
		{"listed email", bearer(uuid.New(), "boss@example.com"), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := do(t, app, tc.headers)
			assert.Equal(t, tc.want, status)
		})
	}
}

func TestRequestMeta(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		meta := RequestMeta(c)
		return c.SendString(meta.Location + "|" + meta.UserAgent)
	})
	_, body := do(t, app, map[string]string{"CF-IPCountry": "DE", "User-Agent": "tester/1.0"})
	assert.Equal(t, "DE|tester/1.0", body)
}
