package handlers

import (
	"errors"

	"parkhub/internal/core/domain"
	"parkhub/internal/core/services"
	"parkhub/internal/pkg/pagination"
	"parkhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookingHandler handles reservation endpoints
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// BookRequest represents booking request body
type BookRequest struct {
	LotID uint `json:"lot_id"`
}

// BookSpot handles spot booking
// @Summary Book a parking spot
// @Description Reserve the first available spot in a lot for the current user
// @Tags Reservations
// @Accept json
// @Produce json
// @Param body body BookRequest true "Target lot"
// @Security BearerAuth
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reservations [post]
func (h *BookingHandler) BookSpot(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req BookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.LotID == 0 {
		return response.BadRequest(c, "Lot ID is required")
	}

	reservation, err := h.bookingService.BookSpot(c.Context(), userID, req.LotID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLotNotFound):
			return response.NotFound(c, "Parking lot not found")
		case errors.Is(err, domain.ErrAlreadyBooked):
			return response.Conflict(c, "You already have an active reservation")
		case errors.Is(err, domain.ErrNoAvailability):
			return response.Conflict(c, "No available spots in this lot")
		default:
			return response.InternalServerError(c, "Failed to book spot")
		}
	}

	return response.Created(c, "Spot booked successfully", reservation.ToResponse())
}

// ReleaseSpot handles spot release
// @Summary Release a parking spot
// @Description Close the reservation and compute duration and cost
// @Tags Reservations
// @Produce json
// @Param id path int true "Reservation ID"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reservations/{id}/release [post]
func (h *BookingHandler) ReleaseSpot(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	reservationID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	reservation, err := h.bookingService.ReleaseSpot(c.Context(), reservationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReservationNotFound):
			return response.NotFound(c, "Reservation not found")
		case errors.Is(err, domain.ErrUnauthorized):
			return response.Forbidden(c, "This reservation belongs to another user")
		case errors.Is(err, domain.ErrAlreadyReleased):
			return response.Conflict(c, "Reservation has already been released")
		default:
			return response.InternalServerError(c, "Failed to release spot")
		}
	}

	return response.Success(c, "Spot released successfully", reservation.ToResponse())
}

// GetActiveReservation returns the user's current open reservation
// @Summary Get active reservation
// @Description Get the current user's open reservation, if any
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reservations/active [get]
func (h *BookingHandler) GetActiveReservation(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	reservation, err := h.bookingService.GetActiveReservation(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get reservation")
	}
	if reservation == nil {
		return response.NotFound(c, "No active reservation")
	}

	return response.Success(c, "Active reservation retrieved successfully", reservation.ToResponse())
}

// ListMyReservations returns the user's full parking history
// @Summary List my reservations
// @Description List the current user's reservations, newest first
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /reservations [get]
func (h *BookingHandler) ListMyReservations(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	reservations, err := h.bookingService.ListUserReservations(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list reservations")
	}

	return response.Success(c, "Reservations retrieved successfully", reservations)
}

// ListAllReservations returns every reservation (admin, paginated)
// @Summary List all reservations
// @Description List reservations of all users with pagination
// @Tags Reservations
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/reservations [get]
func (h *BookingHandler) ListAllReservations(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	reservations, total, err := h.bookingService.ListAllReservations(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list reservations")
	}

	return response.Success(c, "Reservations retrieved successfully",
		pagination.NewResponse(reservations, params, total))
}
