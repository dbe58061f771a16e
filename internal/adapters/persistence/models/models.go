package models

import (
	"time"

	"parkhub/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:120;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	LastLogin *time.Time     `json:"last_login"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Parking Tables
// ============================================================

// ParkingLot represents parking_lots table
type ParkingLot struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Name          string        `gorm:"size:200;not null" json:"name"`
	Address       string        `gorm:"type:text;not null" json:"address"`
	PinCode       string        `gorm:"size:10;not null" json:"pin_code"`
	PricePerHour  float64       `gorm:"type:decimal(10,2);not null" json:"price_per_hour"`
	NumberOfSpots int           `gorm:"not null" json:"number_of_spots"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	Spots         []ParkingSpot `gorm:"foreignKey:LotID" json:"-"`
}

func (ParkingLot) TableName() string {
	return "parking_lots"
}

// LotResponse DTO with computed spot counts
type LotResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	PinCode        string    `json:"pin_code"`
	PricePerHour   float64   `json:"price_per_hour"`
	NumberOfSpots  int       `json:"number_of_spots"`
	AvailableSpots int       `json:"available_spots"`
	OccupiedSpots  int       `json:"occupied_spots"`
	CreatedAt      time.Time `json:"created_at"`
}

func (l *ParkingLot) ToResponse(available, occupied int) *LotResponse {
	return &LotResponse{
		ID:             l.ID,
		Name:           l.Name,
		Address:        l.Address,
		PinCode:        l.PinCode,
		PricePerHour:   l.PricePerHour,
		NumberOfSpots:  l.NumberOfSpots,
		AvailableSpots: available,
		OccupiedSpots:  occupied,
		CreatedAt:      l.CreatedAt,
	}
}

// ParkingSpot represents parking_spots table.
// Status is "A" (available) or "O" (occupied); an occupied spot has exactly
// one open reservation, an available spot has none.
type ParkingSpot struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	LotID      uint       `gorm:"index;not null" json:"lot_id"`
	SpotNumber string     `gorm:"size:20;not null" json:"spot_number"`
	Status     string     `gorm:"size:1;not null;default:'A';index" json:"status"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	Lot        ParkingLot `gorm:"foreignKey:LotID" json:"-"`
}

func (ParkingSpot) TableName() string {
	return "parking_spots"
}

// SpotResponse DTO
type SpotResponse struct {
	ID                 uint                    `json:"id"`
	LotID              uint                    `json:"lot_id"`
	SpotNumber         string                  `json:"spot_number"`
	Status             string                  `json:"status"`
	StatusLabel        string                  `json:"status_label"`
	CurrentReservation *SpotReservationSummary `json:"current_reservation,omitempty"`
}

// SpotReservationSummary is the open-reservation info attached to an occupied spot
type SpotReservationSummary struct {
	UserID           uint      `json:"user_id"`
	Username         string    `json:"username"`
	ParkingTimestamp time.Time `json:"parking_timestamp"`
}

func (s *ParkingSpot) ToResponse(current *SpotReservationSummary) *SpotResponse {
	return &SpotResponse{
		ID:                 s.ID,
		LotID:              s.LotID,
		SpotNumber:         s.SpotNumber,
		Status:             s.Status,
		StatusLabel:        domain.SpotStatus(s.Status).Label(),
		CurrentReservation: current,
	}
}

// Reservation represents reservations table. A reservation is open while
// leaving_timestamp is NULL; it is closed exactly once and never deleted.
type Reservation struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	SpotID           uint        `gorm:"index;not null" json:"spot_id"`
	UserID           uint        `gorm:"index;not null" json:"user_id"`
	ParkingTimestamp time.Time   `gorm:"not null;index" json:"parking_timestamp"`
	LeavingTimestamp *time.Time  `json:"leaving_timestamp"`
	ParkingCost      *float64    `json:"parking_cost"`
	DurationHours    *float64    `json:"duration_hours"`
	Remarks          string      `gorm:"type:text" json:"remarks"`
	Spot             ParkingSpot `gorm:"foreignKey:SpotID" json:"-"`
	User             User        `gorm:"foreignKey:UserID" json:"-"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// IsOpen reports whether the reservation has not been released yet
func (r *Reservation) IsOpen() bool {
	return r.LeavingTimestamp == nil
}

// ReservationResponse DTO with denormalized spot/lot info
type ReservationResponse struct {
	ID               uint       `json:"id"`
	SpotID           uint       `json:"spot_id"`
	SpotNumber       string     `json:"spot_number"`
	LotName          string     `json:"lot_name"`
	LotAddress       string     `json:"lot_address"`
	UserID           uint       `json:"user_id"`
	Username         string     `json:"username"`
	ParkingTimestamp time.Time  `json:"parking_timestamp"`
	LeavingTimestamp *time.Time `json:"leaving_timestamp"`
	ParkingCost      *float64   `json:"parking_cost"`
	DurationHours    *float64   `json:"duration_hours"`
	Remarks          string     `json:"remarks"`
	Status           string     `json:"status"`
}

// ToResponse builds the DTO; Spot.Lot and User must be preloaded
func (r *Reservation) ToResponse() *ReservationResponse {
	status := "Completed"
	if r.IsOpen() {
		status = "Active"
	}
	return &ReservationResponse{
		ID:               r.ID,
		SpotID:           r.SpotID,
		SpotNumber:       r.Spot.SpotNumber,
		LotName:          r.Spot.Lot.Name,
		LotAddress:       r.Spot.Lot.Address,
		UserID:           r.UserID,
		Username:         r.User.Username,
		ParkingTimestamp: r.ParkingTimestamp,
		LeavingTimestamp: r.LeavingTimestamp,
		ParkingCost:      r.ParkingCost,
		DurationHours:    r.DurationHours,
		Remarks:          r.Remarks,
		Status:           status,
	}
}

// UserActivity represents user_activities table (append-only log)
type UserActivity struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"index;not null" json:"user_id"`
	ActivityType      string    `gorm:"size:50;not null" json:"activity_type"`
	ActivityTimestamp time.Time `gorm:"autoCreateTime;index" json:"activity_timestamp"`
	Description       string    `gorm:"type:text" json:"description"`
}

func (UserActivity) TableName() string {
	return "user_activities"
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&ParkingLot{},
		&ParkingSpot{},
		&Reservation{},
		&UserActivity{},
	)
}
