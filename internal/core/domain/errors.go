package domain

import "errors"

// Common domain errors
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// Reservation lifecycle errors
var (
	ErrLotNotFound         = errors.New("parking lot not found")
	ErrSpotNotFound        = errors.New("parking spot not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrAlreadyBooked       = errors.New("user already has an active reservation")
	ErrNoAvailability      = errors.New("no available spots in this parking lot")
	ErrAlreadyReleased     = errors.New("reservation already released")
	ErrCapacityConflict    = errors.New("cannot reduce spots: not enough available spots")
	ErrLotNotEmpty         = errors.New("cannot delete lot: occupied spots remain")
)
