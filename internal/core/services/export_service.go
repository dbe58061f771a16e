package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"parkhub/internal/adapters/persistence/models"
	"parkhub/internal/adapters/persistence/repositories"
)

const csvTimeLayout = "2006-01-02 15:04:05"

// ExportService renders a user's reservation history as CSV
type ExportService struct {
	reservationRepo *repositories.ReservationRepository
	now             func() time.Time
}

// NewExportService creates a new export service
func NewExportService(reservationRepo *repositories.ReservationRepository) *ExportService {
	return &ExportService{
		reservationRepo: reservationRepo,
		now:             time.Now,
	}
}

// ReservationHistoryCSV returns the CSV document and a download filename.
// Open reservations render duration/cost as N/A and status Active.
func (s *ExportService) ReservationHistoryCSV(ctx context.Context, userID uint) ([]byte, string, error) {
	reservations, err := s.reservationRepo.ListByUser(userID)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"Reservation ID", "Spot Number", "Lot Name", "Lot Address",
		"Parking Time", "Leaving Time", "Duration (hrs)", "Cost", "Status", "Remarks",
	}
	if err := writer.Write(header); err != nil {
		return nil, "", err
	}

	for i := range reservations {
		if err := writer.Write(csvRow(&reservations[i])); err != nil {
			return nil, "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("parking_history_%d_%s.csv", userID, s.now().Format("20060102"))
	return buf.Bytes(), filename, nil
}

func csvRow(r *models.Reservation) []string {
	leaving := "Active"
	duration := "N/A"
	cost := "N/A"
	status := "Active"

	if !r.IsOpen() {
		leaving = r.LeavingTimestamp.Format(csvTimeLayout)
		status = "Completed"
		if r.DurationHours != nil {
			duration = fmt.Sprintf("%.2f", *r.DurationHours)
		}
		if r.ParkingCost != nil {
			cost = fmt.Sprintf("%.2f", *r.ParkingCost)
		}
	}

	return []string{
		fmt.Sprintf("%d", r.ID),
		r.Spot.SpotNumber,
		r.Spot.Lot.Name,
		r.Spot.Lot.Address,
		r.ParkingTimestamp.Format(csvTimeLayout),
		leaving,
		duration,
		cost,
		status,
		r.Remarks,
	}
}
