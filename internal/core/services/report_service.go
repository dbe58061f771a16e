package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"parkhub/internal/adapters/persistence/models"
	"parkhub/internal/adapters/persistence/repositories"
	"parkhub/internal/core/domain"

	"github.com/shopspring/decimal"
)

// inactivityWindow is how long without any activity before a user gets a reminder
const inactivityWindow = 7 * 24 * time.Hour

// ReportService builds the scheduled reminder and report jobs. It only reads
// from the store and pushes through the notifier; it holds no locks and has
// no dependency on the booking engine's transactions.
type ReportService struct {
	userRepo        repositories.UserRepository
	reservationRepo *repositories.ReservationRepository
	lotRepo         *repositories.LotRepository
	notifier        Notifier
	now             func() time.Time
}

// NewReportService creates a new report service
func NewReportService(
	userRepo repositories.UserRepository,
	reservationRepo *repositories.ReservationRepository,
	lotRepo *repositories.LotRepository,
	notifier Notifier,
) *ReportService {
	return &ReportService{
		userRepo:        userRepo,
		reservationRepo: reservationRepo,
		lotRepo:         lotRepo,
		notifier:        notifier,
		now:             time.Now,
	}
}

// SendDailyReminders emails users who have had no activity for a week.
// Falls back to the chat webhook when email is not deliverable.
func (s *ReportService) SendDailyReminders(ctx context.Context) (int, error) {
	users, err := s.userRepo.ListByRole(ctx, string(domain.RoleUser))
	if err != nil {
		return 0, err
	}

	lots, err := s.lotRepo.List()
	if err != nil {
		return 0, err
	}

	cutoff := s.now().UTC().Add(-inactivityWindow)
	reminded := 0

	for _, user := range users {
		last, err := s.reservationRepo.LastActivityByUser(user.ID)
		if err != nil {
			return reminded, err
		}
		if last != nil && last.ActivityTimestamp.After(cutoff) {
			continue
		}

		body := fmt.Sprintf(`<html><body>
<h2>🚗 Parking Reminder</h2>
<p>Hi %s,</p>
<p>We noticed you haven't used our parking service recently.</p>
<p>We currently have <strong>%d parking lots</strong> waiting for you.</p>
<p>Book your spot today and enjoy hassle-free parking.</p>
<br>
<p>Best regards,<br>ParkHub Team</p>
</body></html>`, user.Username, len(lots))

		if s.notifier.SendEmail(user.Email, "Time to park! 🚗", body) {
			reminded++
		} else {
			s.notifier.SendChatMessage(fmt.Sprintf("Reminder for %s: %d parking lots available!", user.Username, len(lots)))
		}
	}

	log.Printf("📬 Daily reminders sent to %d users", reminded)
	return reminded, nil
}

// SendMonthlyReports emails each user a summary of last month's bookings.
// Users with no reservations last month are skipped.
func (s *ReportService) SendMonthlyReports(ctx context.Context) (int, error) {
	users, err := s.userRepo.ListByRole(ctx, string(domain.RoleUser))
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonthStart := monthStart.AddDate(0, -1, 0)
	lastMonthEnd := monthStart.Add(-time.Second)

	sent := 0
	for _, user := range users {
		reservations, err := s.reservationRepo.ListByUserBetween(user.ID, lastMonthStart, lastMonthEnd)
		if err != nil {
			return sent, err
		}
		if len(reservations) == 0 {
			continue
		}

		subject := fmt.Sprintf("Your Parking Report — %s", lastMonthStart.Format("January 2006"))
		if s.notifier.SendEmail(user.Email, subject, monthlyReportBody(user.Username, lastMonthStart, reservations)) {
			sent++
		}
	}

	log.Printf("📬 Monthly reports sent to %d users", sent)
	return sent, nil
}

func monthlyReportBody(username string, month time.Time, reservations []models.Reservation) string {
	spent := decimal.Zero
	hours := decimal.Zero
	lotCounts := make(map[string]int)

	for i := range reservations {
		if reservations[i].ParkingCost != nil {
			spent = spent.Add(decimal.NewFromFloat(*reservations[i].ParkingCost))
		}
		if reservations[i].DurationHours != nil {
			hours = hours.Add(decimal.NewFromFloat(*reservations[i].DurationHours))
		}
		lotCounts[reservations[i].Spot.Lot.Name]++
	}

	mostUsed := "N/A"
	best := 0
	for name, count := range lotCounts {
		if count > best {
			mostUsed = name
			best = count
		}
	}

	return fmt.Sprintf(`<html><body>
<h2>📊 Monthly Parking Report — %s</h2>
<p>Hi %s, here is your activity for last month:</p>
<ul>
<li>Total bookings: <strong>%d</strong></li>
<li>Total spent: <strong>%s</strong></li>
<li>Total hours parked: <strong>%s</strong></li>
<li>Most used lot: <strong>%s</strong></li>
</ul>
<p>Thank you for parking with us!</p>
</body></html>`,
		month.Format("January 2006"),
		username,
		len(reservations),
		spent.Round(2).StringFixed(2),
		hours.Round(2).StringFixed(2),
		mostUsed,
	)
}
