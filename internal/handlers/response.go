package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/dto"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "Invalid request body")
}

// pagination reads limit/offset query params, clamping limit to [1, 100].
func pagination(c *fiber.Ctx) (int, int) {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
