package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/services"
)

type ContentHandler struct {
	contentService *services.ContentService
}

func NewContentHandler(contentService *services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

func (h *ContentHandler) CreatePost(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.contentService.CreatePost(c.UserContext(), userID, &req)
	if err != nil {
		return contentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *ContentHandler) GetPost(c *fiber.Ctx) error {
	post, err := h.contentService.GetPost(c.UserContext(), c.Params("ref"))
	if err != nil {
		return contentError(c, err)
	}
	return c.JSON(post)
}

func (h *ContentHandler) AddComment(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.contentService.AddComment(c.UserContext(), userID, c.Params("ref"), &req)
	if err != nil {
		return contentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *ContentHandler) AddReview(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.contentService.AddReview(c.UserContext(), userID, c.Params("ref"), &req)
	if err != nil {
		return contentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *ContentHandler) Vote(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.contentService.Vote(c.UserContext(), userID, c.Params("ref"), req.Value); err != nil {
		return contentError(c, err)
	}
	return c.JSON(fiber.Map{"value": req.Value})
}

func (h *ContentHandler) ToggleSave(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	saved, err := h.contentService.ToggleSave(c.UserContext(), userID, c.Params("ref"))
	if err != nil {
		return contentError(c, err)
	}
	return c.JSON(dto.ToggleResponse{Active: saved})
}

func (h *ContentHandler) ToggleFollow(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	following, err := h.contentService.ToggleFollow(c.UserContext(), userID, targetID)
	if err != nil {
		return contentError(c, err)
	}
	return c.JSON(dto.ToggleResponse{Active: following})
}

func contentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPostNotFound), errors.Is(err, services.ErrUserMissing):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidKind),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrBodyRequired),
		errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrInvalidVote),
		errors.Is(err, services.ErrSelfFollow),
		errors.Is(err, services.ErrTitleTooLong):
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	return err
}
