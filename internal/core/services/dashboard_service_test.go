package services

import (
	"context"
	"testing"
	"time"

	"parkhub/internal/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAdminStats(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	lotA := createTestLot(t, db, "Lot A", 10, 3)
	createTestLot(t, db, "Lot B", 20, 2)

	entry := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	booking := newTestBookingService(db)

	// alice: completed 90-minute stay; bob: still parked
	booking.now = fixedClock(entry)
	done, err := booking.BookSpot(context.Background(), alice.ID, lotA.ID)
	require.NoError(t, err)
	booking.now = fixedClock(entry.Add(90 * time.Minute))
	_, err = booking.ReleaseSpot(context.Background(), done.ID, alice.ID)
	require.NoError(t, err)
	booking.now = fixedClock(entry.Add(2 * time.Hour))
	_, err = booking.BookSpot(context.Background(), bob.ID, lotA.ID)
	require.NoError(t, err)

	svc := NewDashboardService(db, cache.NewNoopStore())
	svc.now = fixedClock(entry.Add(3 * time.Hour))

	stats, err := svc.GetAdminStats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalParkingLots)
	assert.EqualValues(t, 5, stats.TotalParkingSpots)
	assert.EqualValues(t, 4, stats.AvailableSpots)
	assert.EqualValues(t, 1, stats.OccupiedSpots)
	assert.InDelta(t, 20.0, stats.OccupancyRate, 0.001)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.ActiveReservations)
	assert.EqualValues(t, 1, stats.CompletedReservations)
	assert.InDelta(t, 15.00, stats.TotalRevenue, 0.001)
	assert.EqualValues(t, 2, stats.TodayBookings)
}

func TestGetAdminCharts(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	lot := createTestLot(t, db, "Lot A", 10, 2)
	createTestLot(t, db, "Lot B", 20, 1)

	entry := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	booking := newTestBookingService(db)
	booking.now = fixedClock(entry)
	done, err := booking.BookSpot(context.Background(), user.ID, lot.ID)
	require.NoError(t, err)
	booking.now = fixedClock(entry.Add(1 * time.Hour))
	_, err = booking.ReleaseSpot(context.Background(), done.ID, user.ID)
	require.NoError(t, err)

	svc := NewDashboardService(db, cache.NewNoopStore())
	svc.now = fixedClock(entry.Add(2 * time.Hour))

	charts, err := svc.GetAdminCharts(context.Background())
	require.NoError(t, err)

	require.Len(t, charts.LotOccupancy, 2)
	assert.Equal(t, "Lot A", charts.LotOccupancy[0].Name)
	assert.EqualValues(t, 2, charts.LotOccupancy[0].Total)
	assert.EqualValues(t, 0, charts.LotOccupancy[0].Occupied)

	require.Len(t, charts.RevenueByLot, 2)
	assert.InDelta(t, 10.00, charts.RevenueByLot[0].Revenue, 0.001)
	assert.InDelta(t, 0, charts.RevenueByLot[1].Revenue, 0.001)

	require.Len(t, charts.DailyBookings, 7)
	assert.Equal(t, "2026-03-14", charts.DailyBookings[6].Date)
	assert.EqualValues(t, 1, charts.DailyBookings[6].Bookings)
	assert.EqualValues(t, 0, charts.DailyBookings[0].Bookings)
}

func TestGetUserStats(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	lotA := createTestLot(t, db, "Lot A", 10, 2)
	lotB := createTestLot(t, db, "Lot B", 20, 1)

	entry := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	booking := newTestBookingService(db)

	// alice parks twice in Lot A (one completed, one open) and once in Lot B
	booking.now = fixedClock(entry)
	first, err := booking.BookSpot(context.Background(), alice.ID, lotA.ID)
	require.NoError(t, err)
	booking.now = fixedClock(entry.Add(1 * time.Hour))
	_, err = booking.ReleaseSpot(context.Background(), first.ID, alice.ID)
	require.NoError(t, err)

	booking.now = fixedClock(entry.Add(2 * time.Hour))
	second, err := booking.BookSpot(context.Background(), alice.ID, lotB.ID)
	require.NoError(t, err)
	booking.now = fixedClock(entry.Add(3 * time.Hour))
	_, err = booking.ReleaseSpot(context.Background(), second.ID, alice.ID)
	require.NoError(t, err)

	booking.now = fixedClock(entry.Add(4 * time.Hour))
	_, err = booking.BookSpot(context.Background(), alice.ID, lotA.ID)
	require.NoError(t, err)

	svc := NewDashboardService(db, cache.NewNoopStore())
	svc.now = fixedClock(entry.Add(5 * time.Hour))

	stats, err := svc.GetUserStats(context.Background(), alice.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalBookings)
	assert.True(t, stats.HasActiveBooking)
	require.NotNil(t, stats.ActiveBooking)
	assert.Equal(t, "Lot A", stats.ActiveBooking.LotName)
	assert.InDelta(t, 30.00, stats.TotalSpent, 0.001) // 10 + 20
	assert.Equal(t, "Lot A", stats.MostUsedLot)
	assert.EqualValues(t, 3, stats.MonthBookings)

	// bob has no history at all
	empty, err := svc.GetUserStats(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, empty.TotalBookings)
	assert.False(t, empty.HasActiveBooking)
	assert.Equal(t, "N/A", empty.MostUsedLot)
	assert.InDelta(t, 0, empty.TotalSpent, 0.001)
}
