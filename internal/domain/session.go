package domain

import "errors"

var (
	// ErrNoSession is returned when a session token is required but not provided.
	ErrNoSession = errors.New("no session token")
	// ErrInvalidSession is returned when no user holds the given session token.
	ErrInvalidSession = errors.New("invalid session token")
)

// LoginStatus is the status string returned alongside a successful login.
const LoginStatus = "set cookie!!!"

// LoginResponse is returned by a successful login. The session token itself
// travels in a cookie.
type LoginResponse struct {
	Status string       `json:"status"`
	User   UserResponse `json:"user"`
}
