package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is the profile row. Credits and GenerationsRemaining are mutated
// only through atomic increments in the repository, never by absolute
// writes of a locally computed total.
type User struct {
	ID                   string
	Email                string
	PasswordHash         []byte
	AppleUserID          *string
	Credits              int
	GenerationsRemaining int
	TotalTransformations int
	FavoriteArtist       *string
	Premium              bool
	PremiumProductID     *string
	Role                 UserRole
	Status               UserStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CanTransform reports whether the loaded profile still has a generation
// available. Advisory only: the authoritative check is the conditional
// decrement performed at submission time.
func (u User) CanTransform() bool {
	return u.GenerationsRemaining > 0
}

type Session struct {
	ID               string
	UserID           string
	DeviceID         string
	DeviceName       string
	RefreshTokenHash []byte
	IPAddress        string
	UserAgent        string
	CreatedAt        time.Time
	LastSeenAt       time.Time
	ExpiresAt        time.Time
}
