package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
)

const HeaderAdminToken = "X-Admin-Token"

// ModeratorRequired admits, in order:
// 1. the static admin token header
// 2. config-listed admin emails/IDs
// 3. users whose DB role is moderator or admin
//
// It expects OptionalJWT or JWTProtected to have run first.
func ModeratorRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get(HeaderAdminToken) == cfg.AdminToken {
			return c.Next()
		}

		mc, ok := claims(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		email, _ := mc["email"].(string)
		sub, _ := mc["sub"].(string)
		if contains(adminEmails, strings.ToLower(email)) || contains(adminUserIDs, sub) {
			return c.Next()
		}

		if userID, err := uuid.Parse(sub); err == nil {
			var user models.User
			if err := db.WithContext(c.UserContext()).Select("id", "role").First(&user, "id = ?", userID).Error; err == nil {
				if user.IsStaff() {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Moderator access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
