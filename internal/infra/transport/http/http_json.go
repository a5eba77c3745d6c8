package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
)

const maxBodyBytes = 1 << 20

// WriteJSON writes v as the JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// WriteError maps err and writes the matching ErrorResponse.
func WriteError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	status, msg, kind := MapError(err)

	if werr := WriteJSON(w, status, domain.ErrorResponse{Message: msg, Error: string(kind)}); werr != nil {
		log.ErrorContext(r.Context(), "write error response failed", "error", werr)
	}
}

// DecodeBody decodes the request body into dst. JSON is the default;
// form-encoded bodies are passed to fromForm instead.
func DecodeBody(r *http.Request, dst any, fromForm func(form url.Values) error) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}

		return fromForm(r.PostForm)
	}

	if r.Body == nil {
		return nil
	}

	// An empty body decodes to the zero value.
	err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	return nil
}
