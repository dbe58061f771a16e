package services

import (
	"context"
	"time"

	"parkhub/internal/adapters/persistence/models"
	"parkhub/internal/core/domain"
	"parkhub/internal/pkg/cache"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService aggregates read-only statistics for the admin and user
// dashboards. It only reads; derived views are cached with a short TTL and
// invalidated by the mutating services.
type DashboardService struct {
	db         *gorm.DB
	cacheStore cache.Store
	now        func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB, cacheStore cache.Store) *DashboardService {
	return &DashboardService{
		db:         db,
		cacheStore: cacheStore,
		now:        time.Now,
	}
}

// AdminStats represents the admin dashboard aggregate view
type AdminStats struct {
	TotalParkingLots      int64   `json:"total_parking_lots"`
	TotalParkingSpots     int64   `json:"total_parking_spots"`
	AvailableSpots        int64   `json:"available_spots"`
	OccupiedSpots         int64   `json:"occupied_spots"`
	OccupancyRate         float64 `json:"occupancy_rate"`
	TotalUsers            int64   `json:"total_users"`
	ActiveReservations    int64   `json:"active_reservations"`
	CompletedReservations int64   `json:"completed_reservations"`
	TotalRevenue          float64 `json:"total_revenue"`
	TodayBookings         int64   `json:"today_bookings"`
}

// GetAdminStats returns global aggregate stats (cached)
func (s *DashboardService) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	return cache.GetOrCompute(ctx, s.cacheStore, cache.KeyDashboardStats, cache.TTLDashboardStats, func() (*AdminStats, error) {
		return s.computeAdminStats(ctx)
	})
}

func (s *DashboardService) computeAdminStats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}
	db := s.db.WithContext(ctx)

	db.Model(&models.ParkingLot{}).Count(&stats.TotalParkingLots)
	db.Model(&models.ParkingSpot{}).Count(&stats.TotalParkingSpots)
	db.Model(&models.ParkingSpot{}).Where("status = ?", string(domain.SpotAvailable)).Count(&stats.AvailableSpots)
	db.Model(&models.ParkingSpot{}).Where("status = ?", string(domain.SpotOccupied)).Count(&stats.OccupiedSpots)
	db.Model(&models.User{}).Where("role = ?", string(domain.RoleUser)).Count(&stats.TotalUsers)
	db.Model(&models.Reservation{}).Where("leaving_timestamp IS NULL").Count(&stats.ActiveReservations)
	db.Model(&models.Reservation{}).Where("leaving_timestamp IS NOT NULL").Count(&stats.CompletedReservations)

	if stats.TotalParkingSpots > 0 {
		rate := decimal.NewFromInt(stats.OccupiedSpots).
			Div(decimal.NewFromInt(stats.TotalParkingSpots)).
			Mul(decimal.NewFromInt(100))
		stats.OccupancyRate, _ = rate.Round(2).Float64()
	}

	var revenue float64
	db.Model(&models.Reservation{}).
		Select("COALESCE(SUM(parking_cost), 0)").
		Scan(&revenue)
	stats.TotalRevenue, _ = decimal.NewFromFloat(revenue).Round(2).Float64()

	todayStart := s.startOfDay(s.now().UTC())
	db.Model(&models.Reservation{}).
		Where("parking_timestamp >= ?", todayStart).
		Count(&stats.TodayBookings)

	return stats, nil
}

// LotOccupancy is the per-lot breakdown for charts
type LotOccupancy struct {
	Name          string  `json:"name"`
	Total         int64   `json:"total"`
	Occupied      int64   `json:"occupied"`
	Available     int64   `json:"available"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

// LotRevenue is the per-lot revenue breakdown
type LotRevenue struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

// DailyBookings is a day's booking count for the last-7-days chart
type DailyBookings struct {
	Date     string `json:"date"`
	Bookings int64  `json:"bookings"`
}

// ChartsData bundles the admin chart datasets
type ChartsData struct {
	LotOccupancy  []LotOccupancy  `json:"lot_occupancy"`
	DailyBookings []DailyBookings `json:"daily_bookings"`
	RevenueByLot  []LotRevenue    `json:"revenue_by_lot"`
}

// GetAdminCharts returns per-lot occupancy/revenue and 7-day booking counts
func (s *DashboardService) GetAdminCharts(ctx context.Context) (*ChartsData, error) {
	db := s.db.WithContext(ctx)

	var lots []models.ParkingLot
	if err := db.Order("id ASC").Find(&lots).Error; err != nil {
		return nil, err
	}

	data := &ChartsData{
		LotOccupancy:  make([]LotOccupancy, 0, len(lots)),
		DailyBookings: make([]DailyBookings, 0, 7),
		RevenueByLot:  make([]LotRevenue, 0, len(lots)),
	}

	for i := range lots {
		var total, occupied int64
		db.Model(&models.ParkingSpot{}).Where("lot_id = ?", lots[i].ID).Count(&total)
		db.Model(&models.ParkingSpot{}).
			Where("lot_id = ? AND status = ?", lots[i].ID, string(domain.SpotOccupied)).
			Count(&occupied)

		var rate float64
		if total > 0 {
			rate, _ = decimal.NewFromInt(occupied).
				Div(decimal.NewFromInt(total)).
				Mul(decimal.NewFromInt(100)).
				Round(2).Float64()
		}
		data.LotOccupancy = append(data.LotOccupancy, LotOccupancy{
			Name:          lots[i].Name,
			Total:         total,
			Occupied:      occupied,
			Available:     total - occupied,
			OccupancyRate: rate,
		})

		var revenue float64
		db.Model(&models.Reservation{}).
			Joins("JOIN parking_spots ON parking_spots.id = reservations.spot_id").
			Where("parking_spots.lot_id = ?", lots[i].ID).
			Select("COALESCE(SUM(reservations.parking_cost), 0)").
			Scan(&revenue)
		rounded, _ := decimal.NewFromFloat(revenue).Round(2).Float64()
		data.RevenueByLot = append(data.RevenueByLot, LotRevenue{Name: lots[i].Name, Revenue: rounded})
	}

	today := s.startOfDay(s.now().UTC())
	for i := 6; i >= 0; i-- {
		dayStart := today.AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		var count int64
		db.Model(&models.Reservation{}).
			Where("parking_timestamp >= ? AND parking_timestamp < ?", dayStart, dayEnd).
			Count(&count)
		data.DailyBookings = append(data.DailyBookings, DailyBookings{
			Date:     dayStart.Format("2006-01-02"),
			Bookings: count,
		})
	}

	return data, nil
}

// UserStats represents a user's dashboard view
type UserStats struct {
	TotalBookings    int64                       `json:"total_bookings"`
	HasActiveBooking bool                        `json:"has_active_booking"`
	ActiveBooking    *models.ReservationResponse `json:"active_booking,omitempty"`
	TotalSpent       float64                     `json:"total_spent"`
	MostUsedLot      string                      `json:"most_used_lot"`
	MonthBookings    int64                       `json:"month_bookings"`
	MonthSpent       float64                     `json:"month_spent"`
}

// GetUserStats returns per-user booking totals and month-to-date figures
func (s *DashboardService) GetUserStats(ctx context.Context, userID uint) (*UserStats, error) {
	db := s.db.WithContext(ctx)
	stats := &UserStats{MostUsedLot: "N/A"}

	db.Model(&models.Reservation{}).Where("user_id = ?", userID).Count(&stats.TotalBookings)

	var active models.Reservation
	err := db.
		Preload("Spot").
		Preload("Spot.Lot").
		Preload("User").
		Where("user_id = ? AND leaving_timestamp IS NULL", userID).
		First(&active).Error
	if err == nil {
		stats.HasActiveBooking = true
		stats.ActiveBooking = active.ToResponse()
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var spent float64
	db.Model(&models.Reservation{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(parking_cost), 0)").
		Scan(&spent)
	stats.TotalSpent, _ = decimal.NewFromFloat(spent).Round(2).Float64()

	var mostUsed struct {
		Name  string
		Count int64
	}
	row := db.Model(&models.Reservation{}).
		Joins("JOIN parking_spots ON parking_spots.id = reservations.spot_id").
		Joins("JOIN parking_lots ON parking_lots.id = parking_spots.lot_id").
		Where("reservations.user_id = ?", userID).
		Select("parking_lots.name AS name, COUNT(reservations.id) AS count").
		Group("parking_lots.id, parking_lots.name").
		Order("count DESC").
		Limit(1).
		Scan(&mostUsed)
	if row.Error == nil && mostUsed.Name != "" {
		stats.MostUsedLot = mostUsed.Name
	}

	monthStart := s.startOfMonth(s.now().UTC())
	db.Model(&models.Reservation{}).
		Where("user_id = ? AND parking_timestamp >= ?", userID, monthStart).
		Count(&stats.MonthBookings)

	var monthSpent float64
	db.Model(&models.Reservation{}).
		Where("user_id = ? AND parking_timestamp >= ?", userID, monthStart).
		Select("COALESCE(SUM(parking_cost), 0)").
		Scan(&monthSpent)
	stats.MonthSpent, _ = decimal.NewFromFloat(monthSpent).Round(2).Float64()

	return stats, nil
}

func (s *DashboardService) startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *DashboardService) startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
