package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/dto"
)

type HealthHandler struct {
	caps *database.Capabilities
	ping func() error
}

func NewHealthHandler(caps *database.Capabilities, ping func() error) *HealthHandler {
	return &HealthHandler{caps: caps, ping: ping}
}

// Check reports database reachability and whether the moderation tables are
// all present. Missing tables degrade moderation rather than fail requests.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		DB:         "ok",
		Moderation: "enabled",
	}
	if err := h.ping(); err != nil {
		resp.Status = "degraded"
		resp.DB = "unhealthy: " + err.Error()
	}
	for _, t := range database.ModerationTables {
		if !h.caps.Supports(t) {
			resp.MissingTables = append(resp.MissingTables, t)
		}
	}
	if len(resp.MissingTables) > 0 {
		resp.Moderation = "degraded"
	}
	return c.JSON(resp)
}
