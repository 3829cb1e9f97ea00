package handlers

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"draftflow/internal/models"
	"draftflow/internal/repository"
	"draftflow/internal/service"
	"draftflow/internal/transfer"
)

type ContentHandler struct {
	sc repository.ScheduledContentRepository
	p  service.ProjectService
	m  service.MediaService
}

func NewContentHandler(sc repository.ScheduledContentRepository, p service.ProjectService, m service.MediaService) *ContentHandler {
	return &ContentHandler{sc: sc, p: p, m: m}
}

func (h *ContentHandler) ListContent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	projectID := int64(c.QueryInt("project_id", 0))

	owned, err := h.p.CheckOwner(c.Context(), projectID, userID)
	if err != nil || !owned {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "project not found",
		})
	}

	items, err := h.sc.ListByProjectID(c.Context(), projectID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to list content",
		})
	}

	return c.Status(fiber.StatusOK).JSON(items)
}

// ScheduleContent moves a backlog item onto the generation calendar.
func (h *ContentHandler) ScheduleContent(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ContentSchedule
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse request",
		})
	}

	date, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "scheduled_date must be YYYY-MM-DD",
		})
	}

	item, err := h.sc.GetByID(c.Context(), req.ScheduledContentID)
	if err != nil || item == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "content not found",
		})
	}
	if owned, err := h.p.CheckOwner(c.Context(), item.ProjectID, userID); err != nil || !owned {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "content not found",
		})
	}
	if !item.KeywordID.Valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "content has no keyword and cannot be scheduled",
		})
	}

	if err := h.sc.Schedule(c.Context(), item.ID, date, req.ScheduledTime); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to schedule content",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "content scheduled",
	})
}

// ApproveContent releases a generated article for auto-publishing.
func (h *ContentHandler) ApproveContent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	id := int64(c.QueryInt("id", 0))

	item, err := h.sc.GetByID(c.Context(), id)
	if err != nil || item == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "content not found",
		})
	}
	if owned, err := h.p.CheckOwner(c.Context(), item.ProjectID, userID); err != nil || !owned {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "content not found",
		})
	}
	if item.Status != models.StatusGenerated {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "only generated content can be approved",
		})
	}

	if err := h.sc.UpdateStatus(c.Context(), models.StatusApproved, id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to approve content",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "content approved",
	})
}

func (h *ContentHandler) UploadFeaturedImage(c *fiber.Ctx) error {
	userID := GetUserID(c)
	articleID := int64(c.QueryInt("article_id", 0))

	item, err := h.sc.GetByArticleID(c.Context(), articleID)
	if err != nil || item == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "article not found",
		})
	}
	if owned, err := h.p.CheckOwner(c.Context(), item.ProjectID, userID); err != nil || !owned {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "article not found",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to read file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to read file",
		})
	}

	url, err := h.m.UploadFeaturedImage(c.Context(), articleID, data)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"url": url,
	})
}
