package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// SpotStatus is the single-character status stored on a parking spot
type SpotStatus string

const (
	SpotAvailable SpotStatus = "A"
	SpotOccupied  SpotStatus = "O"
)

// Label returns the human-readable form of a spot status
func (s SpotStatus) Label() string {
	if s == SpotOccupied {
		return "Occupied"
	}
	return "Available"
}

// ActivityType classifies entries in the user activity log
type ActivityType string

const (
	ActivityLogin   ActivityType = "login"
	ActivityBooking ActivityType = "booking"
	ActivityRelease ActivityType = "release"
)

// User represents a user in the domain layer
type User struct {
	ID        uint
	Username  string
	Email     string
	Password  string // Hashed
	Role      Role
	CreatedAt time.Time
	LastLogin *time.Time
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
