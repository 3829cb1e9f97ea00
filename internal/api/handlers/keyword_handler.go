package handlers

import (
	"github.com/gofiber/fiber/v2"

	"draftflow/internal/service"
	"draftflow/internal/transfer"
)

type KeywordHandler struct {
	s service.KeywordService
	p service.ProjectService
}

func NewKeywordHandler(s service.KeywordService, p service.ProjectService) *KeywordHandler {
	return &KeywordHandler{s: s, p: p}
}

func (h *KeywordHandler) CreateKeyword(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var kc transfer.KeywordCreation
	if err := c.BodyParser(&kc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse request",
		})
	}

	owned, err := h.p.CheckOwner(c.Context(), kc.ProjectID, userID)
	if err != nil || !owned {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "project not found",
		})
	}

	id, err := h.s.Create(c.Context(), &kc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":      id,
		"message": "keyword created",
	})
}

func (h *KeywordHandler) ListKeywords(c *fiber.Ctx) error {
	userID := GetUserID(c)
	projectID := int64(c.QueryInt("project_id", 0))

	owned, err := h.p.CheckOwner(c.Context(), projectID, userID)
	if err != nil || !owned {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "project not found",
		})
	}

	keywords, err := h.s.List(c.Context(), projectID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to list keywords",
		})
	}

	return c.Status(fiber.StatusOK).JSON(keywords)
}

func (h *KeywordHandler) RemoveKeyword(c *fiber.Ctx) error {
	userID := GetUserID(c)
	id := int64(c.QueryInt("id", 0))
	if id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id is required",
		})
	}

	kw, err := h.s.Get(c.Context(), id)
	if err != nil || kw == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "keyword not found",
		})
	}
	if owned, err := h.p.CheckOwner(c.Context(), kw.ProjectID, userID); err != nil || !owned {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "keyword not found",
		})
	}

	if err := h.s.Remove(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to remove keyword",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "keyword removed",
	})
}
