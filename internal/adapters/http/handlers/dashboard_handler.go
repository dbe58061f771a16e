package handlers

import (
	"parkhub/internal/core/services"
	"parkhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// AdminStats returns aggregate statistics (admin)
// @Summary Admin dashboard statistics
// @Description Get lot, spot, user, reservation and revenue aggregates
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/dashboard/stats [get]
func (h *DashboardHandler) AdminStats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.GetAdminStats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard statistics")
	}

	return response.Success(c, "Dashboard statistics retrieved successfully", stats)
}

// AdminCharts returns chart datasets (admin)
// @Summary Admin dashboard charts
// @Description Get occupancy, booking trend and revenue chart data
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/dashboard/charts [get]
func (h *DashboardHandler) AdminCharts(c *fiber.Ctx) error {
	charts, err := h.dashboardService.GetAdminCharts(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load chart data")
	}

	return response.Success(c, "Chart data retrieved successfully", charts)
}

// UserStats returns per-user statistics
// @Summary User dashboard statistics
// @Description Get the current user's booking and spending summary
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/stats [get]
func (h *DashboardHandler) UserStats(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	stats, err := h.dashboardService.GetUserStats(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load user statistics")
	}

	return response.Success(c, "User statistics retrieved successfully", stats)
}
