package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"parkhub/internal/adapters/persistence/models"
	"parkhub/internal/adapters/persistence/repositories"
	"parkhub/internal/core/domain"
	"parkhub/internal/pkg/cache"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingService handles the reservation lifecycle: allocating an available
// spot to a user and releasing it with duration-based costing. Every mutation
// runs in a single transaction so that no partial state is ever observable.
type BookingService struct {
	db              *gorm.DB
	reservationRepo *repositories.ReservationRepository
	cacheStore      cache.Store
	now             func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(db *gorm.DB, reservationRepo *repositories.ReservationRepository, cacheStore cache.Store) *BookingService {
	return &BookingService{
		db:              db,
		reservationRepo: reservationRepo,
		cacheStore:      cacheStore,
		now:             time.Now,
	}
}

// ============================================================
// Booking
// ============================================================

// BookSpot books the first available spot in a lot for the user.
// One open reservation per user; the spot flip and the reservation insert
// commit together or not at all.
func (s *BookingService) BookSpot(ctx context.Context, userID, lotID uint) (*models.Reservation, error) {
	var reservation *models.Reservation

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}

		var lot models.ParkingLot
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLotNotFound
			}
			return err
		}

		var open int64
		if err := tx.Model(&models.Reservation{}).
			Where("user_id = ? AND leaving_timestamp IS NULL", userID).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrAlreadyBooked
		}

		spot, err := claimSpot(tx, lotID)
		if err != nil {
			return err
		}

		reservation = &models.Reservation{
			SpotID:           spot.ID,
			UserID:           userID,
			ParkingTimestamp: s.now().UTC(),
		}
		if err := tx.Create(reservation).Error; err != nil {
			return err
		}

		activity := &models.UserActivity{
			UserID:       userID,
			ActivityType: string(domain.ActivityBooking),
			Description:  fmt.Sprintf("Booked spot %s", spot.SpotNumber),
		}
		return tx.Create(activity).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidateViews(ctx)
	log.Printf("✅ Reservation %d created (user %d, lot %d)", reservation.ID, userID, lotID)

	return s.reservationRepo.GetByID(reservation.ID)
}

// claimSpot selects the lowest-numbered available spot and flips it to
// occupied with a conditional update. Ordering by id matches label-number
// order since label indexes only grow with creation order, and stays correct
// where lexical label order would not (indexes past the zero-pad width).
// A lost race moves on to the next candidate; spots already attempted are
// excluded so the loop terminates.
func claimSpot(tx *gorm.DB, lotID uint) (*models.ParkingSpot, error) {
	var tried []uint
	for {
		query := tx.
			Where("lot_id = ? AND status = ?", lotID, string(domain.SpotAvailable)).
			Order("id ASC")
		if len(tried) > 0 {
			query = query.Where("id NOT IN ?", tried)
		}

		var spot models.ParkingSpot
		if err := query.First(&spot).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrNoAvailability
			}
			return nil, err
		}

		result := tx.Model(&models.ParkingSpot{}).
			Where("id = ? AND status = ?", spot.ID, string(domain.SpotAvailable)).
			Update("status", string(domain.SpotOccupied))
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			spot.Status = string(domain.SpotOccupied)
			return &spot, nil
		}

		tried = append(tried, spot.ID)
	}
}

// ============================================================
// Release & Costing
// ============================================================

// ReleaseSpot closes an open reservation, computes the elapsed-time cost and
// frees the spot. Only the owner may release; releasing twice fails with
// ErrAlreadyReleased and leaves the first result untouched.
func (s *BookingService) ReleaseSpot(ctx context.Context, reservationID, userID uint) (*models.Reservation, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.Preload("Spot").Preload("Spot.Lot").First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrReservationNotFound
			}
			return err
		}

		if reservation.UserID != userID {
			return domain.ErrUnauthorized
		}
		if !reservation.IsOpen() {
			return domain.ErrAlreadyReleased
		}

		leaving := s.now().UTC()
		// Price in effect on the lot right now, not at booking time.
		durationHours, cost := computeCost(reservation.ParkingTimestamp, leaving, reservation.Spot.Lot.PricePerHour)

		// Conditional close: guards against a concurrent release of the same
		// reservation slipping between the read and the write.
		result := tx.Model(&models.Reservation{}).
			Where("id = ? AND leaving_timestamp IS NULL", reservation.ID).
			Updates(map[string]interface{}{
				"leaving_timestamp": leaving,
				"duration_hours":    durationHours,
				"parking_cost":      cost,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrAlreadyReleased
		}

		if err := tx.Model(&models.ParkingSpot{}).
			Where("id = ?", reservation.SpotID).
			Update("status", string(domain.SpotAvailable)).Error; err != nil {
			return err
		}

		activity := &models.UserActivity{
			UserID:       userID,
			ActivityType: string(domain.ActivityRelease),
			Description:  fmt.Sprintf("Released spot %s", reservation.Spot.SpotNumber),
		}
		return tx.Create(activity).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidateViews(ctx)
	log.Printf("✅ Reservation %d released (user %d)", reservationID, userID)

	return s.reservationRepo.GetByID(reservationID)
}

// computeCost derives duration and cost from the elapsed time. Duration is
// stored rounded to 2 decimals; cost is the unrounded duration times the
// hourly price, rounded to 2 decimals. Fractions of an hour are charged
// proportionally, with no minimum.
func computeCost(entry, exit time.Time, pricePerHour float64) (float64, float64) {
	rawHours := decimal.NewFromFloat(exit.Sub(entry).Seconds() / 3600)
	duration, _ := rawHours.Round(2).Float64()
	cost, _ := rawHours.Mul(decimal.NewFromFloat(pricePerHour)).Round(2).Float64()
	return duration, cost
}

// ============================================================
// Queries
// ============================================================

// GetReservation returns a reservation by ID
func (s *BookingService) GetReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}
	return reservation, nil
}

// GetActiveReservation returns the user's open reservation, or nil
func (s *BookingService) GetActiveReservation(ctx context.Context, userID uint) (*models.Reservation, error) {
	return s.reservationRepo.GetActiveByUser(userID)
}

// ListUserReservations returns all reservations of a user, newest first
func (s *BookingService) ListUserReservations(ctx context.Context, userID uint) ([]*models.ReservationResponse, error) {
	reservations, err := s.reservationRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		responses = append(responses, reservations[i].ToResponse())
	}
	return responses, nil
}

// ListAllReservations returns reservations globally with pagination
func (s *BookingService) ListAllReservations(ctx context.Context, offset, limit int) ([]*models.ReservationResponse, int64, error) {
	reservations, total, err := s.reservationRepo.ListAll(offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		responses = append(responses, reservations[i].ToResponse())
	}
	return responses, total, nil
}

// invalidateViews drops every cached read view a booking or release could
// have changed. Runs synchronously right after commit; cache failures are
// logged inside and never bubble up.
func (s *BookingService) invalidateViews(ctx context.Context) {
	cache.Invalidate(ctx, s.cacheStore,
		cache.KeyAvailableLots,
		cache.KeyAdminLots,
		cache.KeyDashboardStats,
	)
}
