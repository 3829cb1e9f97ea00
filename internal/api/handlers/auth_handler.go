package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	config "draftflow/configs"
	"draftflow/internal/service"
	"draftflow/pkg/utils"
)

type AuthHandler struct {
	cfg config.Config
	s   service.ApiKeyService
}

func NewAuthHandler(cfg config.Config, s service.ApiKeyService) *AuthHandler {
	return &AuthHandler{cfg: cfg, s: s}
}

// ExchangeToken trades a valid API key for a short-lived session cookie, so
// browser clients don't have to hold the key itself.
func (h *AuthHandler) ExchangeToken(c *fiber.Ctx) error {
	apiKey := c.Query("api_key")
	if apiKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "api_key is required",
		})
	}

	userID, err := h.s.GetUserID(c.Context(), apiKey)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid API key",
		})
	}

	token, err := utils.GenerateToken(h.cfg.SecretKey, fmt.Sprintf("%d", userID), 24*time.Hour)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to issue token",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		MaxAge:   int((24 * time.Hour).Seconds()),
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": token,
	})
}
