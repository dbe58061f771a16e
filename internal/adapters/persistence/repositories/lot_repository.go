package repositories

import (
	"parkhub/internal/adapters/persistence/models"
	"parkhub/internal/core/domain"

	"gorm.io/gorm"
)

// LotRepository handles parking lot and spot queries
type LotRepository struct {
	db *gorm.DB
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *gorm.DB) *LotRepository {
	return &LotRepository{db: db}
}

// GetByID returns a lot by ID
func (r *LotRepository) GetByID(id uint) (*models.ParkingLot, error) {
	var lot models.ParkingLot
	err := r.db.First(&lot, id).Error
	return &lot, err
}

// List returns all lots ordered by creation
func (r *LotRepository) List() ([]models.ParkingLot, error) {
	var lots []models.ParkingLot
	err := r.db.Order("id ASC").Find(&lots).Error
	return lots, err
}

// SpotCounts returns available/occupied spot counts for every lot
func (r *LotRepository) SpotCounts() (map[uint][2]int, error) {
	type row struct {
		LotID  uint
		Status string
		Count  int
	}
	var rows []row
	err := r.db.Model(&models.ParkingSpot{}).
		Select("lot_id, status, COUNT(*) as count").
		Group("lot_id, status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	// index 0 = available, 1 = occupied
	counts := make(map[uint][2]int)
	for _, r := range rows {
		c := counts[r.LotID]
		if r.Status == string(domain.SpotAvailable) {
			c[0] = r.Count
		} else {
			c[1] = r.Count
		}
		counts[r.LotID] = c
	}
	return counts, nil
}

// ListSpots returns all spots of a lot in creation order, which matches
// label-number order
func (r *LotRepository) ListSpots(lotID uint) ([]models.ParkingSpot, error) {
	var spots []models.ParkingSpot
	err := r.db.
		Where("lot_id = ?", lotID).
		Order("id ASC").
		Find(&spots).Error
	return spots, err
}

// CountSpotsByStatus counts spots of a lot with the given status
func (r *LotRepository) CountSpotsByStatus(lotID uint, status domain.SpotStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.ParkingSpot{}).
		Where("lot_id = ? AND status = ?", lotID, string(status)).
		Count(&count).Error
	return count, err
}

// GetSpotOpenReservation returns the open reservation of an occupied spot, or nil
func (r *LotRepository) GetSpotOpenReservation(spotID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.
		Preload("User").
		Where("spot_id = ? AND leaving_timestamp IS NULL", spotID).
		First(&reservation).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}
