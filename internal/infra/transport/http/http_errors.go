package http

import (
	"errors"
	"net/http"

	"github.com/mkrupp/geocheckin/internal/domain"
)

// ErrMalformedBody is returned when a request body cannot be decoded.
var ErrMalformedBody = errors.New("malformed request body")

// ErrorKind classifies an error for the client.
type ErrorKind string

const (
	KindInvalidInput    ErrorKind = "InvalidInput"
	KindConflict        ErrorKind = "Conflict"
	KindUnauthorized    ErrorKind = "Unauthorized"
	KindNotFound        ErrorKind = "NotFound"
	KindInternalFailure ErrorKind = "InternalFailure"
)

const (
	MessageUnauthorized   = "Unauthorized - please log in"
	MessageNotFound       = "File Not Found"
	MessageInternalFailed = "Internal Server Error"
)

type errorMapping struct {
	err     error
	status  int
	kind    ErrorKind
	message string // empty uses err's text
}

// First match wins, so a failed check-in is reported as such whatever it wraps.
//
//nolint:gochecknoglobals
var errorMappings = []errorMapping{
	{domain.ErrCheckInFailed, http.StatusInternalServerError, KindInternalFailure, MessageInternalFailed},
	{domain.ErrMissingCredentials, http.StatusBadRequest, KindInvalidInput, "Both password and username required."},
	{domain.ErrPasswordTooLong, http.StatusBadRequest, KindInvalidInput, ""},
	{domain.ErrInvalidCoordinates, http.StatusBadRequest, KindInvalidInput, ""},
	{domain.ErrMissingVenueName, http.StatusBadRequest, KindInvalidInput, ""},
	{ErrMalformedBody, http.StatusBadRequest, KindInvalidInput, ""},
	{domain.ErrUserAlreadyExists, http.StatusBadRequest, KindConflict, "User already exists"},
	{domain.ErrUserNotFound, http.StatusBadRequest, KindUnauthorized, "User doesn't exist"},
	{domain.ErrInvalidCredentials, http.StatusBadRequest, KindUnauthorized, "Incorrect password"},
	{domain.ErrNoSession, http.StatusUnauthorized, KindUnauthorized, MessageUnauthorized},
	{domain.ErrInvalidSession, http.StatusUnauthorized, KindUnauthorized, MessageUnauthorized},
	{domain.ErrVenueNotFound, http.StatusNotFound, KindNotFound, ""},
}

// MapError translates err into an HTTP status, a client message and an error kind.
// Unknown errors map to 500 and never leak their text.
func MapError(err error) (int, string, ErrorKind) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}

		msg := m.message
		if msg == "" {
			msg = m.err.Error()
		}

		return m.status, msg, m.kind
	}

	return http.StatusInternalServerError, MessageInternalFailed, KindInternalFailure
}
