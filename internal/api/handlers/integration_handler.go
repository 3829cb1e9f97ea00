package handlers

import (
	"github.com/gofiber/fiber/v2"

	"draftflow/internal/service"
	"draftflow/internal/transfer"
)

type IntegrationHandler struct {
	s service.IntegrationService
	p service.ProjectService
}

func NewIntegrationHandler(s service.IntegrationService, p service.ProjectService) *IntegrationHandler {
	return &IntegrationHandler{s: s, p: p}
}

func (h *IntegrationHandler) CreateIntegration(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var ic transfer.IntegrationCreation
	if err := c.BodyParser(&ic); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse request",
		})
	}

	owned, err := h.p.CheckOwner(c.Context(), ic.ProjectID, userID)
	if err != nil || !owned {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "project not found",
		})
	}

	id, validationErrs, err := h.s.Create(c.Context(), &ic)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if len(validationErrs) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"errors": validationErrs,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":      id,
		"message": "integration created",
	})
}

func (h *IntegrationHandler) TestIntegration(c *fiber.Ctx) error {
	userID := GetUserID(c)
	id := int64(c.QueryInt("id", 0))

	in, err := h.s.Get(c.Context(), id)
	if err != nil || in == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "integration not found",
		})
	}
	if owned, err := h.p.CheckOwner(c.Context(), in.ProjectID, userID); err != nil || !owned {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "integration not found",
		})
	}

	result, err := h.s.Test(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *IntegrationHandler) ListIntegrations(c *fiber.Ctx) error {
	userID := GetUserID(c)
	projectID := int64(c.QueryInt("project_id", 0))

	owned, err := h.p.CheckOwner(c.Context(), projectID, userID)
	if err != nil || !owned {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "project not found",
		})
	}

	integrations, err := h.s.List(c.Context(), projectID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to list integrations",
		})
	}

	return c.Status(fiber.StatusOK).JSON(integrations)
}

func (h *IntegrationHandler) RemoveIntegration(c *fiber.Ctx) error {
	userID := GetUserID(c)
	id := int64(c.QueryInt("id", 0))

	in, err := h.s.Get(c.Context(), id)
	if err != nil || in == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "integration not found",
		})
	}
	if owned, err := h.p.CheckOwner(c.Context(), in.ProjectID, userID); err != nil || !owned {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "integration not found",
		})
	}

	if err := h.s.Remove(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to remove integration",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "integration removed",
	})
}
