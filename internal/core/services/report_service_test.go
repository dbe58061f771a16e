package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"parkhub/internal/adapters/persistence/models"
	"parkhub/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNotifier records outbound messages instead of delivering them
type fakeNotifier struct {
	mu        sync.Mutex
	emailOK   bool
	emails    []string // recipient addresses
	subjects  []string
	bodies    []string
	chatTexts []string
}

func (f *fakeNotifier) SendEmail(to, subject, htmlBody string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.emailOK {
		return false
	}
	f.emails = append(f.emails, to)
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, htmlBody)
	return true
}

func (f *fakeNotifier) SendChatMessage(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatTexts = append(f.chatTexts, text)
	return true
}

func newTestReportService(db *gorm.DB, notifier Notifier) *ReportService {
	return NewReportService(
		repositories.NewUserRepository(db),
		repositories.NewReservationRepository(db),
		repositories.NewLotRepository(db),
		notifier,
	)
}

func TestSendDailyReminders_OnlyInactiveUsers(t *testing.T) {
	db := setupTestDB(t)
	active := createTestUser(t, db, "active")
	idle := createTestUser(t, db, "idle")
	createTestLot(t, db, "Central Lot", 10, 2)

	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	// active parked yesterday, idle has been away for two weeks
	require.NoError(t, db.Create(&models.UserActivity{
		UserID:            active.ID,
		ActivityType:      "booking",
		ActivityTimestamp: now.Add(-24 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&models.UserActivity{
		UserID:            idle.ID,
		ActivityType:      "login",
		ActivityTimestamp: now.Add(-14 * 24 * time.Hour),
	}).Error)

	notifier := &fakeNotifier{emailOK: true}
	svc := newTestReportService(db, notifier)
	svc.now = fixedClock(now)

	reminded, err := svc.SendDailyReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, reminded)
	require.Len(t, notifier.emails, 1)
	assert.Equal(t, "idle@test.local", notifier.emails[0])
	assert.Contains(t, notifier.bodies[0], "idle")
	assert.Empty(t, notifier.chatTexts)
}

func TestSendDailyReminders_NoActivityAtAll(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "newcomer")

	notifier := &fakeNotifier{emailOK: true}
	svc := newTestReportService(db, notifier)
	svc.now = fixedClock(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC))

	// A user with no activity log entry counts as inactive
	reminded, err := svc.SendDailyReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, reminded)
}

func TestSendDailyReminders_ChatFallback(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "idle")

	notifier := &fakeNotifier{emailOK: false}
	svc := newTestReportService(db, notifier)
	svc.now = fixedClock(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC))

	reminded, err := svc.SendDailyReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, reminded)
	require.Len(t, notifier.chatTexts, 1)
	assert.Contains(t, notifier.chatTexts[0], "idle")
}

func TestSendMonthlyReports(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	createTestUser(t, db, "bob") // no reservations, gets no report
	lot := createTestLot(t, db, "Central Lot", 10, 2)

	booking := newTestBookingService(db)

	// One completed stay in February, one in March
	febEntry := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	booking.now = fixedClock(febEntry)
	feb, err := booking.BookSpot(context.Background(), alice.ID, lot.ID)
	require.NoError(t, err)
	booking.now = fixedClock(febEntry.Add(2 * time.Hour))
	_, err = booking.ReleaseSpot(context.Background(), feb.ID, alice.ID)
	require.NoError(t, err)

	marEntry := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	booking.now = fixedClock(marEntry)
	mar, err := booking.BookSpot(context.Background(), alice.ID, lot.ID)
	require.NoError(t, err)
	booking.now = fixedClock(marEntry.Add(1 * time.Hour))
	_, err = booking.ReleaseSpot(context.Background(), mar.ID, alice.ID)
	require.NoError(t, err)

	notifier := &fakeNotifier{emailOK: true}
	svc := newTestReportService(db, notifier)
	svc.now = fixedClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	sent, err := svc.SendMonthlyReports(context.Background())
	require.NoError(t, err)

	// Only alice, and only her February stay
	assert.Equal(t, 1, sent)
	require.Len(t, notifier.emails, 1)
	assert.Equal(t, "alice@test.local", notifier.emails[0])
	assert.Contains(t, notifier.subjects[0], "February 2026")
	assert.Contains(t, notifier.bodies[0], "<strong>1</strong>")
	assert.Contains(t, notifier.bodies[0], "20.00")
	assert.Contains(t, notifier.bodies[0], "Central Lot")
}
