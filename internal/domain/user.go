package domain

import (
	"errors"

	"github.com/mkrupp/geocheckin/internal/geo"
)

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the password does not match the stored digest.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingCredentials is returned when email or password is empty.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrPasswordTooLong is returned when the password exceeds what the hasher accepts.
	ErrPasswordTooLong = errors.New("password too long")
)

// User represents a registered account together with its sessions and check-in history.
type User struct {
	ID             int64   // Unique identifier
	Email          string  // Login email, unique
	PasswordHash   []byte  // Digest produced by the password hasher
	CreatedAt      int64   // Unix timestamp of account creation
	ActiveSessions []string
	VisitHistory   []Visit
}

// HasSession reports whether token is one of the user's active sessions.
func (u *User) HasSession(token string) bool {
	for _, s := range u.ActiveSessions {
		if s == token {
			return true
		}
	}

	return false
}

// Visit is one entry of a user's check-in history. The location is the one
// the client claimed for the venue at check-in time.
type Visit struct {
	VenueName string
	Location  geo.Point
}

// VisitResponse is the wire form of a Visit.
type VisitResponse struct {
	Name        string     `json:"name"`
	Coordinates [2]float64 `json:"coordinates"`
}

// UserResponse is the wire form of a User. It never carries the password
// digest or session tokens.
type UserResponse struct {
	ID            int64           `json:"id"`
	Email         string          `json:"email"`
	VisitedVenues []VisitResponse `json:"visitedVenues"`
}

// NewUserResponse projects u for the client.
func NewUserResponse(u *User) UserResponse {
	visits := make([]VisitResponse, 0, len(u.VisitHistory))
	for _, v := range u.VisitHistory {
		visits = append(visits, VisitResponse{
			Name:        v.VenueName,
			Coordinates: v.Location.Coordinates(),
		})
	}

	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		VisitedVenues: visits,
	}
}
