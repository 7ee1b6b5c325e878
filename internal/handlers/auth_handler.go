package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) || errors.Is(err, services.ErrUsernameTaken) {
			return fail(c, fiber.StatusConflict, err.Error())
		}
		if errors.Is(err, services.ErrWeakCredentials) || errors.Is(err, services.ErrInvalidUsername) {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return fail(c, fiber.StatusUnauthorized, err.Error())
		}
		return err
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Refresh(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return fail(c, fiber.StatusUnauthorized, err.Error())
		}
		return err
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.authService.Logout(&req); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to logout")
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.authService.DeleteAccount(userID, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return fail(c, fiber.StatusUnauthorized, "Incorrect password. Please try again.")
		case errors.Is(err, services.ErrUserNotFound):
			return fail(c, fiber.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrPasswordRequired):
			return fail(c, fiber.StatusBadRequest, "Password is required")
		}
		return fail(c, fiber.StatusInternalServerError, "Failed to delete account")
	}

	return c.JSON(fiber.Map{"message": "Account deleted successfully"})
}
