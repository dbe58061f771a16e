package handlers

import (
	"errors"
	"strconv"

	"parkhub/internal/core/domain"
	"parkhub/internal/core/services"
	"parkhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LotHandler handles parking lot endpoints
type LotHandler struct {
	lotService *services.LotService
}

// NewLotHandler creates a new lot handler
func NewLotHandler(lotService *services.LotService) *LotHandler {
	return &LotHandler{lotService: lotService}
}

// CreateLot handles lot creation (admin)
// @Summary Create parking lot
// @Description Create a new parking lot with its initial spots
// @Tags Lots
// @Accept json
// @Produce json
// @Param body body services.CreateLotInput true "Lot data"
// @Security BearerAuth
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/lots [post]
func (h *LotHandler) CreateLot(c *fiber.Ctx) error {
	var input services.CreateLotInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	lot, err := h.lotService.CreateLot(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Name, address, a non-negative price and at least one spot are required")
		default:
			return response.InternalServerError(c, "Failed to create parking lot")
		}
	}

	return response.Created(c, "Parking lot created successfully", lot)
}

// UpdateLot handles lot update (admin)
// @Summary Update parking lot
// @Description Update lot fields; changing number_of_spots grows or shrinks the lot
// @Tags Lots
// @Accept json
// @Produce json
// @Param id path int true "Lot ID"
// @Param body body services.UpdateLotInput true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/lots/{id} [put]
func (h *LotHandler) UpdateLot(c *fiber.Ctx) error {
	lotID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid lot ID")
	}

	var input services.UpdateLotInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	lot, err := h.lotService.UpdateLot(c.Context(), lotID, &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLotNotFound):
			return response.NotFound(c, "Parking lot not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid lot data")
		case errors.Is(err, domain.ErrCapacityConflict):
			return response.Conflict(c, "Not enough available spots to shrink the lot")
		default:
			return response.InternalServerError(c, "Failed to update parking lot")
		}
	}

	return response.Success(c, "Parking lot updated successfully", lot)
}

// DeleteLot handles lot deletion (admin)
// @Summary Delete parking lot
// @Description Delete a lot and its spots; fails while any spot is occupied
// @Tags Lots
// @Produce json
// @Param id path int true "Lot ID"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/lots/{id} [delete]
func (h *LotHandler) DeleteLot(c *fiber.Ctx) error {
	lotID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid lot ID")
	}

	if err := h.lotService.DeleteLot(c.Context(), lotID); err != nil {
		switch {
		case errors.Is(err, domain.ErrLotNotFound):
			return response.NotFound(c, "Parking lot not found")
		case errors.Is(err, domain.ErrLotNotEmpty):
			return response.Conflict(c, "Cannot delete lot while spots are occupied")
		default:
			return response.InternalServerError(c, "Failed to delete parking lot")
		}
	}

	return response.Success(c, "Parking lot deleted successfully", nil)
}

// ListLots handles the admin lot list
// @Summary List all parking lots
// @Description List all lots with availability counts
// @Tags Lots
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/lots [get]
func (h *LotHandler) ListLots(c *fiber.Ctx) error {
	lots, err := h.lotService.ListLots(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list parking lots")
	}

	return response.Success(c, "Parking lots retrieved successfully", lots)
}

// ListAvailableLots handles the user-facing lot list
// @Summary List lots with availability
// @Description List lots that currently have at least one available spot
// @Tags Lots
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /lots [get]
func (h *LotHandler) ListAvailableLots(c *fiber.Ctx) error {
	lots, err := h.lotService.ListAvailableLots(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list parking lots")
	}

	return response.Success(c, "Available lots retrieved successfully", lots)
}

// GetLot handles single lot retrieval
// @Summary Get parking lot
// @Description Get a lot with availability counts
// @Tags Lots
// @Produce json
// @Param id path int true "Lot ID"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /lots/{id} [get]
func (h *LotHandler) GetLot(c *fiber.Ctx) error {
	lotID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid lot ID")
	}

	lot, err := h.lotService.GetLot(c.Context(), lotID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLotNotFound):
			return response.NotFound(c, "Parking lot not found")
		default:
			return response.InternalServerError(c, "Failed to get parking lot")
		}
	}

	return response.Success(c, "Parking lot retrieved successfully", lot)
}

// ListSpots handles per-lot spot listing (admin)
// @Summary List spots of a lot
// @Description List all spots of a lot with their open reservation, if any
// @Tags Lots
// @Produce json
// @Param id path int true "Lot ID"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/lots/{id}/spots [get]
func (h *LotHandler) ListSpots(c *fiber.Ctx) error {
	lotID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid lot ID")
	}

	spots, err := h.lotService.ListSpots(c.Context(), lotID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLotNotFound):
			return response.NotFound(c, "Parking lot not found")
		default:
			return response.InternalServerError(c, "Failed to list spots")
		}
	}

	return response.Success(c, "Spots retrieved successfully", spots)
}

// parseIDParam parses a positive uint path parameter
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
