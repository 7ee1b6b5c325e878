package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/services"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
	contentService    *services.ContentService
}

func NewModerationHandler(moderationService *services.ModerationService, contentService *services.ContentService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService, contentService: contentService}
}

// CreateReport accepts reports from signed-in and anonymous users alike.
func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	res, err := h.moderationService.CreateReport(c.UserContext(), middleware.OptionalUserID(c), &req, middleware.RequestMeta(c))
	if err != nil {
		return moderationError(c, err)
	}
	if res.ReportID != nil {
		return c.Status(fiber.StatusCreated).JSON(res)
	}
	return c.JSON(res)
}

func (h *ModerationHandler) Analyze(c *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if strings.TrimSpace(req.Body) == "" && strings.TrimSpace(req.Title) == "" {
		return fail(c, fiber.StatusBadRequest, "body or title is required")
	}
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	return c.JSON(h.contentService.Analyze(contentType, req.Title, req.Subtitle, req.Body))
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	filter := repository.ReportFilter{
		Status:      c.Query("status"),
		ContentType: c.Query("content_type"),
		Limit:       limit,
		Offset:      offset,
	}
	if raw := c.Query("reporter_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid reporter_id")
		}
		filter.ReporterID = &id
	}

	reports, total, err := h.moderationService.ListReports(c.UserContext(), filter)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.JSON(dto.PageResponse[models.Report]{Items: reports, Total: total, Limit: limit, Offset: offset})
}

func (h *ModerationHandler) ResolveReports(c *fiber.Ctx) error {
	var req dto.ResolveReportsRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	// nil when the caller used the static admin token
	actorID := middleware.OptionalUserID(c)
	res, err := h.moderationService.ResolveReports(c.UserContext(), actorID, &req, middleware.RequestMeta(c))
	if err != nil {
		return moderationError(c, err)
	}
	return c.JSON(res)
}

func (h *ModerationHandler) GetScore(c *fiber.Ctx) error {
	out, err := h.moderationService.InspectContent(c.UserContext(), c.Params("type"), c.Params("ref"))
	if err != nil {
		return moderationError(c, err)
	}
	return c.JSON(out)
}

func (h *ModerationHandler) GetReporter(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	out, err := h.moderationService.Reporter(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return fail(c, fiber.StatusNotFound, "User not found")
		}
		return err
	}
	return c.JSON(out)
}

func (h *ModerationHandler) ListLogs(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	entries, total, err := h.moderationService.ListLogs(c.UserContext(), repository.AuditFilter{
		Action:      c.Query("action"),
		ContentType: c.Query("content_type"),
		ContentID:   c.Query("content_id"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.PageResponse[models.ModerationLog]{Items: entries, Total: total, Limit: limit, Offset: offset})
}

func (h *ModerationHandler) BlockUser(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.BlockUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.moderationService.BlockUser(c.UserContext(), userID, req.BlockedID); err != nil {
		if errors.Is(err, services.ErrSelfBlock) {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, services.ErrAlreadyBlocked) {
			return fail(c, fiber.StatusConflict, err.Error())
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User blocked"})
}

func (h *ModerationHandler) UnblockUser(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	blockedID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	if err := h.moderationService.UnblockUser(c.UserContext(), userID, blockedID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User unblocked"})
}

func (h *ModerationHandler) ListBlocks(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	ids, err := h.moderationService.BlockedIDs(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"blocked_ids": ids})
}

func moderationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, moderation.ErrContentNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, moderation.ErrInvalidContentType),
		errors.Is(err, moderation.ErrReasonRequired),
		errors.Is(err, moderation.ErrInvalidResolution),
		errors.Is(err, moderation.ErrInvalidAction):
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	return err
}
