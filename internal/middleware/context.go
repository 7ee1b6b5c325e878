package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
)

var ErrNoUser = errors.New("no authenticated user")

// Headers set by the edge proxy with the client's country.
var locationHeaders = []string{"CF-IPCountry", "X-Country-Code", "X-Geo-Country"}

func claims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	return mc, ok
}

// UserID extracts the user UUID from the JWT "sub" claim.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	mc, ok := claims(c)
	if !ok {
		return uuid.Nil, ErrNoUser
	}
	sub, ok := mc["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

// OptionalUserID is UserID for routes that also accept anonymous callers.
func OptionalUserID(c *fiber.Ctx) *uuid.UUID {
	id, err := UserID(c)
	if err != nil {
		return nil
	}
	return &id
}

func RequestMeta(c *fiber.Ctx) moderation.RequestMeta {
	meta := moderation.RequestMeta{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
	for _, h := range locationHeaders {
		if v := strings.TrimSpace(c.Get(h)); v != "" {
			meta.Location = v
			break
		}
	}
	return meta
}
