package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"parkhub/internal/adapters/persistence/models"
	"parkhub/internal/adapters/persistence/repositories"
	"parkhub/internal/pkg/cache"

	"github.com/stretchr/testify/require"
)

var testDBSeq atomic.Int64

// setupTestDB opens a fresh in-memory database per test. The immediate
// transaction lock serializes concurrent write transactions the way the
// production database does with row conflicts.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared&_busy_timeout=5000&_txlock=immediate",
		testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@test.local",
		Password: "hashed",
		Role:     "user",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestLot(t *testing.T, db *gorm.DB, name string, pricePerHour float64, numSpots int) *models.ParkingLot {
	t.Helper()

	lotService := NewLotService(db, repositories.NewLotRepository(db), cache.NewNoopStore())
	created, err := lotService.CreateLot(context.Background(), &CreateLotInput{
		Name:          name,
		Address:       "1 Test Street",
		PinCode:       "560001",
		PricePerHour:  pricePerHour,
		NumberOfSpots: numSpots,
	})
	require.NoError(t, err)

	var lot models.ParkingLot
	require.NoError(t, db.First(&lot, created.ID).Error)
	return &lot
}

func newTestBookingService(db *gorm.DB) *BookingService {
	return NewBookingService(db, repositories.NewReservationRepository(db), cache.NewNoopStore())
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
