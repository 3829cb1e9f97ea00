package handlers

import (
	"github.com/gofiber/fiber/v2"

	job "draftflow/internal/jobs"
)

// ScanHandler exposes the two scheduled scans for manual triggering.
type ScanHandler struct {
	gen *job.GenerationScanJob
	pub *job.PublishScanJob
}

func NewScanHandler(gen *job.GenerationScanJob, pub *job.PublishScanJob) *ScanHandler {
	return &ScanHandler{gen: gen, pub: pub}
}

func (h *ScanHandler) TriggerGenerationScan(c *fiber.Ctx) error {
	var opts job.ScanOptions
	if err := c.BodyParser(&opts); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid scan options",
		})
	}

	summary, err := h.gen.Run(c.Context(), opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"summary":    summary.String(),
		"dispatched": summary.Dispatched,
		"skipped":    summary.Skipped,
		"dry_run":    summary.DryRun,
	})
}

func (h *ScanHandler) TriggerPublishScan(c *fiber.Ctx) error {
	dispatched, err := h.pub.Run(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"dispatched": dispatched,
	})
}
