package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"parkhub/internal/adapters/persistence/models"
	"parkhub/internal/adapters/persistence/repositories"
	"parkhub/internal/core/domain"
	"parkhub/internal/pkg/cache"

	"gorm.io/gorm"
)

// LotService handles parking lot management: creation, capacity adjustment,
// deletion and the cached lot list views.
type LotService struct {
	db         *gorm.DB
	lotRepo    *repositories.LotRepository
	cacheStore cache.Store
}

// NewLotService creates a new lot service
func NewLotService(db *gorm.DB, lotRepo *repositories.LotRepository, cacheStore cache.Store) *LotService {
	return &LotService{
		db:         db,
		lotRepo:    lotRepo,
		cacheStore: cacheStore,
	}
}

// CreateLotInput represents lot creation input
type CreateLotInput struct {
	Name          string  `json:"name" validate:"required"`
	Address       string  `json:"address" validate:"required"`
	PinCode       string  `json:"pin_code" validate:"required"`
	PricePerHour  float64 `json:"price_per_hour"`
	NumberOfSpots int     `json:"number_of_spots"`
}

// UpdateLotInput represents lot update input; nil fields are left unchanged
type UpdateLotInput struct {
	Name          *string  `json:"name"`
	Address       *string  `json:"address"`
	PinCode       *string  `json:"pin_code"`
	PricePerHour  *float64 `json:"price_per_hour"`
	NumberOfSpots *int     `json:"number_of_spots"`
}

// ============================================================
// Mutations
// ============================================================

// CreateLot creates a lot together with its initial all-available spots
func (s *LotService) CreateLot(ctx context.Context, input *CreateLotInput) (*models.LotResponse, error) {
	if input.Name == "" || input.Address == "" || input.PricePerHour < 0 || input.NumberOfSpots < 1 {
		return nil, domain.ErrInvalidInput
	}

	lot := &models.ParkingLot{
		Name:          input.Name,
		Address:       input.Address,
		PinCode:       input.PinCode,
		PricePerHour:  input.PricePerHour,
		NumberOfSpots: input.NumberOfSpots,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lot).Error; err != nil {
			return err
		}
		return createSpots(tx, lot.ID, 1, input.NumberOfSpots)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateLotViews(ctx)
	log.Printf("✅ Parking lot %d created with %d spots", lot.ID, input.NumberOfSpots)

	return lot.ToResponse(input.NumberOfSpots, 0), nil
}

// UpdateLot updates lot attributes and resizes its spot set. Growing appends
// available spots continuing the label numbering; shrinking removes available
// spots highest-numbered first and fails all-or-nothing when occupied spots
// are in the way.
func (s *LotService) UpdateLot(ctx context.Context, lotID uint, input *UpdateLotInput) (*models.LotResponse, error) {
	var lot models.ParkingLot

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLotNotFound
			}
			return err
		}

		if input.Name != nil {
			lot.Name = *input.Name
		}
		if input.Address != nil {
			lot.Address = *input.Address
		}
		if input.PinCode != nil {
			lot.PinCode = *input.PinCode
		}
		if input.PricePerHour != nil {
			if *input.PricePerHour < 0 {
				return domain.ErrInvalidInput
			}
			// Applies to open reservations too: cost is computed with the
			// price in effect at release time.
			lot.PricePerHour = *input.PricePerHour
		}

		if input.NumberOfSpots != nil {
			newCount := *input.NumberOfSpots
			if newCount < 0 {
				return domain.ErrInvalidInput
			}
			if err := resizeSpots(tx, &lot, newCount); err != nil {
				return err
			}
			lot.NumberOfSpots = newCount
		}

		return tx.Save(&lot).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidateLotViews(ctx)
	log.Printf("✅ Parking lot %d updated", lotID)

	available, occupied, err := s.spotCountsFor(lotID)
	if err != nil {
		return nil, err
	}
	return lot.ToResponse(available, occupied), nil
}

// resizeSpots grows or shrinks a lot's spot set inside the caller's transaction
func resizeSpots(tx *gorm.DB, lot *models.ParkingLot, newCount int) error {
	current := lot.NumberOfSpots

	switch {
	case newCount > current:
		next, err := nextSpotIndex(tx, lot.ID)
		if err != nil {
			return err
		}
		return createSpots(tx, lot.ID, next, next+newCount-current-1)

	case newCount < current:
		toRemove := current - newCount
		var victims []models.ParkingSpot
		if err := tx.
			Where("lot_id = ? AND status = ?", lot.ID, string(domain.SpotAvailable)).
			Order("id DESC").
			Limit(toRemove).
			Find(&victims).Error; err != nil {
			return err
		}
		if len(victims) < toRemove {
			return domain.ErrCapacityConflict
		}

		ids := make([]uint, 0, len(victims))
		for _, v := range victims {
			ids = append(ids, v.ID)
		}
		return removeAvailableSpots(tx, ids)
	}

	return nil
}

// removeAvailableSpots deletes the selected spots only while they are still
// available. A booking may occupy one of them between selection and deletion;
// the conditional delete detects that and the whole shrink rolls back instead
// of orphaning the spot's open reservation.
func removeAvailableSpots(tx *gorm.DB, ids []uint) error {
	result := tx.
		Where("id IN ? AND status = ?", ids, string(domain.SpotAvailable)).
		Delete(&models.ParkingSpot{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(len(ids)) {
		return domain.ErrCapacityConflict
	}
	return nil
}

// createSpots inserts spots labeled SPOT-<lot>-<from>..<to>, all available
func createSpots(tx *gorm.DB, lotID uint, from, to int) error {
	for i := from; i <= to; i++ {
		spot := models.ParkingSpot{
			LotID:      lotID,
			SpotNumber: fmt.Sprintf("SPOT-%d-%03d", lotID, i),
			Status:     string(domain.SpotAvailable),
		}
		if err := tx.Create(&spot).Error; err != nil {
			return err
		}
	}
	return nil
}

// nextSpotIndex returns one past the highest label index in use, so grown
// lots never reuse a live label. Label indexes only ever grow with creation
// order, so the newest spot by id carries the highest index.
func nextSpotIndex(tx *gorm.DB, lotID uint) (int, error) {
	var last models.ParkingSpot
	err := tx.
		Where("lot_id = ?", lotID).
		Order("id DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	parts := strings.Split(last.SpotNumber, "-")
	idx, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, fmt.Errorf("malformed spot label %q: %w", last.SpotNumber, err)
	}
	return idx + 1, nil
}

// DeleteLot removes a lot and its spots; fails while any spot is occupied
func (s *LotService) DeleteLot(ctx context.Context, lotID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lot models.ParkingLot
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLotNotFound
			}
			return err
		}

		var occupied int64
		if err := tx.Model(&models.ParkingSpot{}).
			Where("lot_id = ? AND status = ?", lotID, string(domain.SpotOccupied)).
			Count(&occupied).Error; err != nil {
			return err
		}
		if occupied > 0 {
			return domain.ErrLotNotEmpty
		}

		if err := tx.Where("lot_id = ?", lotID).Delete(&models.ParkingSpot{}).Error; err != nil {
			return err
		}
		return tx.Delete(&lot).Error
	})
	if err != nil {
		return err
	}

	s.invalidateLotViews(ctx)
	log.Printf("✅ Parking lot %d deleted", lotID)
	return nil
}

// ============================================================
// Queries
// ============================================================

// ListLots returns all lots with computed spot counts (cached)
func (s *LotService) ListLots(ctx context.Context) ([]*models.LotResponse, error) {
	return cache.GetOrCompute(ctx, s.cacheStore, cache.KeyAdminLots, cache.TTLAdminLots, func() ([]*models.LotResponse, error) {
		return s.computeLotList(false)
	})
}

// ListAvailableLots returns lots with at least one available spot (cached)
func (s *LotService) ListAvailableLots(ctx context.Context) ([]*models.LotResponse, error) {
	return cache.GetOrCompute(ctx, s.cacheStore, cache.KeyAvailableLots, cache.TTLAvailableLots, func() ([]*models.LotResponse, error) {
		return s.computeLotList(true)
	})
}

func (s *LotService) computeLotList(onlyAvailable bool) ([]*models.LotResponse, error) {
	lots, err := s.lotRepo.List()
	if err != nil {
		return nil, err
	}
	counts, err := s.lotRepo.SpotCounts()
	if err != nil {
		return nil, err
	}

	responses := make([]*models.LotResponse, 0, len(lots))
	for i := range lots {
		c := counts[lots[i].ID]
		if onlyAvailable && c[0] == 0 {
			continue
		}
		responses = append(responses, lots[i].ToResponse(c[0], c[1]))
	}
	return responses, nil
}

// GetLot returns a single lot with computed spot counts
func (s *LotService) GetLot(ctx context.Context, lotID uint) (*models.LotResponse, error) {
	lot, err := s.lotRepo.GetByID(lotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLotNotFound
		}
		return nil, err
	}

	available, occupied, err := s.spotCountsFor(lotID)
	if err != nil {
		return nil, err
	}
	return lot.ToResponse(available, occupied), nil
}

// ListSpots returns a lot's spots with current open-reservation info
func (s *LotService) ListSpots(ctx context.Context, lotID uint) ([]*models.SpotResponse, error) {
	if _, err := s.lotRepo.GetByID(lotID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLotNotFound
		}
		return nil, err
	}

	spots, err := s.lotRepo.ListSpots(lotID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.SpotResponse, 0, len(spots))
	for i := range spots {
		var current *models.SpotReservationSummary
		if spots[i].Status == string(domain.SpotOccupied) {
			reservation, err := s.lotRepo.GetSpotOpenReservation(spots[i].ID)
			if err != nil {
				return nil, err
			}
			if reservation != nil {
				current = &models.SpotReservationSummary{
					UserID:           reservation.UserID,
					Username:         reservation.User.Username,
					ParkingTimestamp: reservation.ParkingTimestamp,
				}
			}
		}
		responses = append(responses, spots[i].ToResponse(current))
	}
	return responses, nil
}

func (s *LotService) spotCountsFor(lotID uint) (int, int, error) {
	available, err := s.lotRepo.CountSpotsByStatus(lotID, domain.SpotAvailable)
	if err != nil {
		return 0, 0, err
	}
	occupied, err := s.lotRepo.CountSpotsByStatus(lotID, domain.SpotOccupied)
	if err != nil {
		return 0, 0, err
	}
	return int(available), int(occupied), nil
}

// invalidateLotViews drops the cached lot lists after any lot mutation
func (s *LotService) invalidateLotViews(ctx context.Context) {
	cache.Invalidate(ctx, s.cacheStore,
		cache.KeyAdminLots,
		cache.KeyAvailableLots,
	)
}
