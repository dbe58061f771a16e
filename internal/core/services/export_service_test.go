package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"parkhub/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationHistoryCSV(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	lot := createTestLot(t, db, "Central Lot", 10, 2)

	booking := newTestBookingService(db)

	// One completed reservation, one still open
	entry := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	booking.now = fixedClock(entry)
	closed, err := booking.BookSpot(context.Background(), user.ID, lot.ID)
	require.NoError(t, err)
	booking.now = fixedClock(entry.Add(90 * time.Minute))
	_, err = booking.ReleaseSpot(context.Background(), closed.ID, user.ID)
	require.NoError(t, err)

	booking.now = fixedClock(entry.Add(2 * time.Hour))
	open, err := booking.BookSpot(context.Background(), user.ID, lot.ID)
	require.NoError(t, err)

	svc := NewExportService(repositories.NewReservationRepository(db))
	svc.now = fixedClock(entry.Add(3 * time.Hour))

	data, filename, err := svc.ReservationHistoryCSV(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("parking_history_%d_20260314.csv", user.ID), filename)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"Reservation ID", "Spot Number", "Lot Name", "Lot Address",
		"Parking Time", "Leaving Time", "Duration (hrs)", "Cost", "Status", "Remarks",
	}, rows[0])

	// Newest first: the open reservation comes before the completed one
	openRow, closedRow := rows[1], rows[2]

	assert.Equal(t, fmt.Sprintf("%d", open.ID), openRow[0])
	assert.Equal(t, "2026-03-14 11:00:00", openRow[4])
	assert.Equal(t, "Active", openRow[5])
	assert.Equal(t, "N/A", openRow[6])
	assert.Equal(t, "N/A", openRow[7])
	assert.Equal(t, "Active", openRow[8])

	assert.Equal(t, fmt.Sprintf("%d", closed.ID), closedRow[0])
	assert.Equal(t, "Central Lot", closedRow[2])
	assert.Equal(t, "2026-03-14 09:00:00", closedRow[4])
	assert.Equal(t, "2026-03-14 10:30:00", closedRow[5])
	assert.Equal(t, "1.50", closedRow[6])
	assert.Equal(t, "15.00", closedRow[7])
	assert.Equal(t, "Completed", closedRow[8])
}

func TestReservationHistoryCSV_EmptyHistory(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")

	svc := NewExportService(repositories.NewReservationRepository(db))
	data, _, err := svc.ReservationHistoryCSV(context.Background(), user.ID)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1) // header only
}
