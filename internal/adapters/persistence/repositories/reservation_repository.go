package repositories

import (
	"time"

	"parkhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ReservationRepository handles reservation and activity log queries
type ReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// GetByID returns a reservation with spot, lot and user preloaded
func (r *ReservationRepository) GetByID(id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.
		Preload("Spot").
		Preload("Spot.Lot").
		Preload("User").
		First(&reservation, id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// GetActiveByUser returns the user's open reservation, or nil if none
func (r *ReservationRepository) GetActiveByUser(userID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.
		Preload("Spot").
		Preload("Spot.Lot").
		Preload("User").
		Where("user_id = ? AND leaving_timestamp IS NULL", userID).
		First(&reservation).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListByUser returns all reservations of a user, newest first
func (r *ReservationRepository) ListByUser(userID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.
		Preload("Spot").
		Preload("Spot.Lot").
		Preload("User").
		Where("user_id = ?", userID).
		Order("parking_timestamp DESC").
		Find(&reservations).Error
	return reservations, err
}

// ListByUserBetween returns a user's reservations that started in [from, to]
func (r *ReservationRepository) ListByUserBetween(userID uint, from, to time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.
		Preload("Spot").
		Preload("Spot.Lot").
		Where("user_id = ? AND parking_timestamp >= ? AND parking_timestamp <= ?", userID, from, to).
		Order("parking_timestamp ASC").
		Find(&reservations).Error
	return reservations, err
}

// ListAll returns reservations globally, newest first, with total count
func (r *ReservationRepository) ListAll(offset, limit int) ([]models.Reservation, int64, error) {
	var total int64
	if err := r.db.Model(&models.Reservation{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reservations []models.Reservation
	err := r.db.
		Preload("Spot").
		Preload("Spot.Lot").
		Preload("User").
		Order("parking_timestamp DESC").
		Offset(offset).
		Limit(limit).
		Find(&reservations).Error
	return reservations, total, err
}

// ============================================================
// Activity Log (append-only)
// ============================================================

// AppendActivity appends an entry to the user activity log
func (r *ReservationRepository) AppendActivity(activity *models.UserActivity) error {
	return r.db.Create(activity).Error
}

// LastActivityByUser returns a user's most recent activity entry, or nil
func (r *ReservationRepository) LastActivityByUser(userID uint) (*models.UserActivity, error) {
	var activity models.UserActivity
	err := r.db.
		Where("user_id = ?", userID).
		Order("activity_timestamp DESC").
		First(&activity).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &activity, nil
}
