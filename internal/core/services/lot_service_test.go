package services

import (
	"context"
	"fmt"
	"testing"

	"parkhub/internal/adapters/persistence/models"
	"parkhub/internal/adapters/persistence/repositories"
	"parkhub/internal/core/domain"
	"parkhub/internal/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestLotService(db *gorm.DB) *LotService {
	return NewLotService(db, repositories.NewLotRepository(db), cache.NewNoopStore())
}

func lotSpotNumbers(t *testing.T, svc *LotService, lotID uint) []string {
	t.Helper()

	spots, err := svc.lotRepo.ListSpots(lotID)
	require.NoError(t, err)

	numbers := make([]string, 0, len(spots))
	for i := range spots {
		numbers = append(numbers, spots[i].SpotNumber)
	}
	return numbers
}

func TestCreateLot_CreatesLabeledSpots(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)

	lot, err := svc.CreateLot(context.Background(), &CreateLotInput{
		Name:          "Central Lot",
		Address:       "1 Test Street",
		PinCode:       "560001",
		PricePerHour:  10,
		NumberOfSpots: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, lot.NumberOfSpots)
	assert.Equal(t, 3, lot.AvailableSpots)
	assert.Equal(t, 0, lot.OccupiedSpots)

	want := []string{
		fmt.Sprintf("SPOT-%d-001", lot.ID),
		fmt.Sprintf("SPOT-%d-002", lot.ID),
		fmt.Sprintf("SPOT-%d-003", lot.ID),
	}
	assert.Equal(t, want, lotSpotNumbers(t, svc, lot.ID))

	var statuses []string
	require.NoError(t, db.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lot.ID).
		Pluck("status", &statuses).Error)
	for _, s := range statuses {
		assert.Equal(t, string(domain.SpotAvailable), s)
	}
}

func TestCreateLot_RejectsInvalidInput(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)

	cases := []CreateLotInput{
		{Name: "", Address: "a", PinCode: "1", PricePerHour: 1, NumberOfSpots: 1},
		{Name: "x", Address: "", PinCode: "1", PricePerHour: 1, NumberOfSpots: 1},
		{Name: "x", Address: "a", PinCode: "1", PricePerHour: -1, NumberOfSpots: 1},
		{Name: "x", Address: "a", PinCode: "1", PricePerHour: 1, NumberOfSpots: 0},
	}
	for _, input := range cases {
		_, err := svc.CreateLot(context.Background(), &input)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	var count int64
	db.Model(&models.ParkingLot{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestUpdateLot_GrowAppendsSpots(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)
	lot := createTestLot(t, db, "Central Lot", 10, 3)

	newCount := 5
	updated, err := svc.UpdateLot(context.Background(), lot.ID, &UpdateLotInput{NumberOfSpots: &newCount})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.NumberOfSpots)
	assert.Equal(t, 5, updated.AvailableSpots)

	numbers := lotSpotNumbers(t, svc, lot.ID)
	require.Len(t, numbers, 5)
	assert.Equal(t, fmt.Sprintf("SPOT-%d-004", lot.ID), numbers[3])
	assert.Equal(t, fmt.Sprintf("SPOT-%d-005", lot.ID), numbers[4])
}

func TestUpdateLot_ShrinkRemovesHighestNumberedAvailable(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)
	lot := createTestLot(t, db, "Central Lot", 10, 5)

	newCount := 3
	updated, err := svc.UpdateLot(context.Background(), lot.ID, &UpdateLotInput{NumberOfSpots: &newCount})
	require.NoError(t, err)

	assert.Equal(t, 3, updated.NumberOfSpots)
	want := []string{
		fmt.Sprintf("SPOT-%d-001", lot.ID),
		fmt.Sprintf("SPOT-%d-002", lot.ID),
		fmt.Sprintf("SPOT-%d-003", lot.ID),
	}
	assert.Equal(t, want, lotSpotNumbers(t, svc, lot.ID))
}

func TestUpdateLot_ShrinkSparesOccupiedSpots(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)
	user := createTestUser(t, db, "alice")
	lot := createTestLot(t, db, "Central Lot", 10, 3)

	// Occupy the lowest-numbered spot, then shrink to 2: the two
	// highest-numbered available spots are not both needed, so only 003 goes.
	booking := newTestBookingService(db)
	_, err := booking.BookSpot(context.Background(), user.ID, lot.ID)
	require.NoError(t, err)

	newCount := 2
	_, err = svc.UpdateLot(context.Background(), lot.ID, &UpdateLotInput{NumberOfSpots: &newCount})
	require.NoError(t, err)

	want := []string{
		fmt.Sprintf("SPOT-%d-001", lot.ID),
		fmt.Sprintf("SPOT-%d-002", lot.ID),
	}
	assert.Equal(t, want, lotSpotNumbers(t, svc, lot.ID))
}

func TestUpdateLot_ShrinkBlockedByOccupancy(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	lot := createTestLot(t, db, "Central Lot", 10, 3)

	booking := newTestBookingService(db)
	_, err := booking.BookSpot(context.Background(), alice.ID, lot.ID)
	require.NoError(t, err)
	_, err = booking.BookSpot(context.Background(), bob.ID, lot.ID)
	require.NoError(t, err)

	// Only one available spot left; shrinking to 1 needs two removed
	newCount := 1
	_, err = svc.UpdateLot(context.Background(), lot.ID, &UpdateLotInput{NumberOfSpots: &newCount})
	assert.ErrorIs(t, err, domain.ErrCapacityConflict)

	// All-or-nothing: no spot was removed and the count is unchanged
	assert.Len(t, lotSpotNumbers(t, svc, lot.ID), 3)
	var fresh models.ParkingLot
	require.NoError(t, db.First(&fresh, lot.ID).Error)
	assert.Equal(t, 3, fresh.NumberOfSpots)
}

func TestUpdateLot_GrowAfterShrinkContinuesNumbering(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)
	lot := createTestLot(t, db, "Central Lot", 10, 3)

	two, four := 2, 4
	_, err := svc.UpdateLot(context.Background(), lot.ID, &UpdateLotInput{NumberOfSpots: &two})
	require.NoError(t, err)
	_, err = svc.UpdateLot(context.Background(), lot.ID, &UpdateLotInput{NumberOfSpots: &four})
	require.NoError(t, err)

	// Labels continue past the highest ever used, never reusing 003's slot
	want := []string{
		fmt.Sprintf("SPOT-%d-001", lot.ID),
		fmt.Sprintf("SPOT-%d-002", lot.ID),
		fmt.Sprintf("SPOT-%d-003", lot.ID),
		fmt.Sprintf("SPOT-%d-004", lot.ID),
	}
	assert.Equal(t, want, lotSpotNumbers(t, svc, lot.ID))
}

func TestUpdateLot_ShrinkAbortsWhenSelectionTurnsOccupied(t *testing.T) {
	db := setupTestDB(t)
	lot := createTestLot(t, db, "Central Lot", 10, 3)

	tx := db.Begin()
	require.NoError(t, tx.Error)

	// Pick shrink victims the way resizeSpots does
	var victims []models.ParkingSpot
	require.NoError(t, tx.
		Where("lot_id = ? AND status = ?", lot.ID, string(domain.SpotAvailable)).
		Order("id DESC").
		Limit(2).
		Find(&victims).Error)
	require.Len(t, victims, 2)

	ids := []uint{victims[0].ID, victims[1].ID}

	// A booking claims one of the selected spots before the delete runs
	require.NoError(t, tx.Model(&models.ParkingSpot{}).
		Where("id = ?", victims[0].ID).
		Update("status", string(domain.SpotOccupied)).Error)

	// The conditional delete must refuse the now-occupied spot and fail the
	// shrink instead of orphaning its reservation
	err := removeAvailableSpots(tx, ids)
	assert.ErrorIs(t, err, domain.ErrCapacityConflict)
	require.NoError(t, tx.Rollback().Error)

	var count int64
	require.NoError(t, db.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lot.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestUpdateLot_ResizeBeyondLabelPadWidth(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)
	lot := createTestLot(t, db, "Mega Lot", 10, 1)

	// Lot already grown past the three-digit pad: lexical label order would
	// put 1000 before 999 here
	for _, n := range []int{999, 1000} {
		require.NoError(t, db.Create(&models.ParkingSpot{
			LotID:      lot.ID,
			SpotNumber: fmt.Sprintf("SPOT-%d-%03d", lot.ID, n),
			Status:     string(domain.SpotAvailable),
		}).Error)
	}
	require.NoError(t, db.Model(&models.ParkingLot{}).
		Where("id = ?", lot.ID).Update("number_of_spots", 3).Error)

	// Growing continues from 1000, not from the lexically largest 999
	four := 4
	_, err := svc.UpdateLot(context.Background(), lot.ID, &UpdateLotInput{NumberOfSpots: &four})
	require.NoError(t, err)
	want := []string{
		fmt.Sprintf("SPOT-%d-001", lot.ID),
		fmt.Sprintf("SPOT-%d-999", lot.ID),
		fmt.Sprintf("SPOT-%d-1000", lot.ID),
		fmt.Sprintf("SPOT-%d-1001", lot.ID),
	}
	assert.Equal(t, want, lotSpotNumbers(t, svc, lot.ID))

	// Shrinking removes the numerically highest spots first
	two := 2
	_, err = svc.UpdateLot(context.Background(), lot.ID, &UpdateLotInput{NumberOfSpots: &two})
	require.NoError(t, err)
	want = []string{
		fmt.Sprintf("SPOT-%d-001", lot.ID),
		fmt.Sprintf("SPOT-%d-999", lot.ID),
	}
	assert.Equal(t, want, lotSpotNumbers(t, svc, lot.ID))
}

func TestUpdateLot_PriceChange(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)
	lot := createTestLot(t, db, "Central Lot", 10, 2)

	price := 25.5
	updated, err := svc.UpdateLot(context.Background(), lot.ID, &UpdateLotInput{PricePerHour: &price})
	require.NoError(t, err)
	assert.Equal(t, 25.5, updated.PricePerHour)

	negative := -1.0
	_, err = svc.UpdateLot(context.Background(), lot.ID, &UpdateLotInput{PricePerHour: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateLot_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)

	name := "Renamed"
	_, err := svc.UpdateLot(context.Background(), 9999, &UpdateLotInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
}

func TestDeleteLot_RemovesLotAndSpots(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)
	lot := createTestLot(t, db, "Central Lot", 10, 3)

	require.NoError(t, svc.DeleteLot(context.Background(), lot.ID))

	var lots, spots int64
	db.Model(&models.ParkingLot{}).Count(&lots)
	db.Model(&models.ParkingSpot{}).Where("lot_id = ?", lot.ID).Count(&spots)
	assert.EqualValues(t, 0, lots)
	assert.EqualValues(t, 0, spots)
}

func TestDeleteLot_BlockedWhileOccupied(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)
	user := createTestUser(t, db, "alice")
	lot := createTestLot(t, db, "Central Lot", 10, 2)

	booking := newTestBookingService(db)
	_, err := booking.BookSpot(context.Background(), user.ID, lot.ID)
	require.NoError(t, err)

	err = svc.DeleteLot(context.Background(), lot.ID)
	assert.ErrorIs(t, err, domain.ErrLotNotEmpty)

	var lots int64
	db.Model(&models.ParkingLot{}).Count(&lots)
	assert.EqualValues(t, 1, lots)
}

func TestListAvailableLots_FiltersFullLots(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)
	user := createTestUser(t, db, "alice")
	full := createTestLot(t, db, "Full Lot", 10, 1)
	open := createTestLot(t, db, "Open Lot", 10, 2)

	booking := newTestBookingService(db)
	_, err := booking.BookSpot(context.Background(), user.ID, full.ID)
	require.NoError(t, err)

	available, err := svc.ListAvailableLots(context.Background())
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, open.ID, available[0].ID)

	all, err := svc.ListLots(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListSpots_IncludesOpenReservation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestLotService(db)
	user := createTestUser(t, db, "alice")
	lot := createTestLot(t, db, "Central Lot", 10, 2)

	booking := newTestBookingService(db)
	_, err := booking.BookSpot(context.Background(), user.ID, lot.ID)
	require.NoError(t, err)

	spots, err := svc.ListSpots(context.Background(), lot.ID)
	require.NoError(t, err)
	require.Len(t, spots, 2)

	assert.Equal(t, string(domain.SpotOccupied), spots[0].Status)
	require.NotNil(t, spots[0].CurrentReservation)
	assert.Equal(t, "alice", spots[0].CurrentReservation.Username)

	assert.Equal(t, string(domain.SpotAvailable), spots[1].Status)
	assert.Nil(t, spots[1].CurrentReservation)
}
