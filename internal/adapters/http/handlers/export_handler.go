package handlers

import (
	"fmt"

	"parkhub/internal/core/services"
	"parkhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ExportHandler handles data export endpoints
type ExportHandler struct {
	exportService *services.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportCSV streams the user's parking history as a CSV download
// @Summary Export parking history
// @Description Download the current user's full reservation history as CSV
// @Tags Export
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV file"
// @Router /export/reservations [get]
func (h *ExportHandler) ExportCSV(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, filename, err := h.exportService.ReservationHistoryCSV(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to export parking history")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
