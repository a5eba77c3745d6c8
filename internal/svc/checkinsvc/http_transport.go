package checkinsvc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mkrupp/geocheckin/internal/domain"
	context_ "github.com/mkrupp/geocheckin/internal/infra/context"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
	http_ "github.com/mkrupp/geocheckin/internal/infra/transport/http"
)

// HTTPTransport handles HTTP requests for the check-in service.
type HTTPTransport struct {
	checkInSvc *CheckInService
	log        logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(checkInSvc *CheckInService) *HTTPTransport {
	return &HTTPTransport{
		checkInSvc: checkInSvc,
		log:        logging.GetLogger("svc.checkinsvc.http_transport"),
	}
}

// RegisterRoutes sets up the authorized route POST /api/checkIn.
func (ht *HTTPTransport) RegisterRoutes(rt *http_.Router) {
	rt.HandleAuthorized("POST /api/checkIn", http.HandlerFunc(ht.HandleCheckIn))
}

var _ http_.RouteRegistrar = (*HTTPTransport)(nil)

// HandleCheckIn processes check-in requests.
// Expects venueName, userLongitude, userLatitude, venueLongitude and
// venueLatitude as JSON or form fields.
func (ht *HTTPTransport) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	if err := ht.handleCheckIn(w, r); err != nil {
		http_.WriteError(w, r, ht.log, err)
	}
}

func (ht *HTTPTransport) handleCheckIn(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "check-in request failed", "error", err)
		} else {
			log.DebugContext(ctx, "check-in request handled")
		}
	}(r.Context())

	token, _, ok := context_.SessionFromContext(r.Context())
	if !ok {
		return domain.ErrNoSession
	}

	var req domain.CheckInRequest

	if err := http_.DecodeBody(r, &req, func(form url.Values) error {
		return decodeCheckInForm(form, &req)
	}); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	ci, err := req.CheckIn()
	if err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	u, err := ht.checkInSvc.CheckIn(r.Context(), token, ci)
	if err != nil {
		return fmt.Errorf("check in: %w", err)
	}

	if err := http_.WriteJSON(w, http.StatusOK, domain.CheckInResponse{UpdatedUser: domain.NewUserResponse(u)}); err != nil {
		log.ErrorContext(r.Context(), "write response failed", "error", err)
	}

	return nil
}

func decodeCheckInForm(form url.Values, req *domain.CheckInRequest) error {
	req.VenueName = form.Get("venueName")

	fields := []struct {
		key string
		dst **float64
	}{
		{"userLongitude", &req.UserLongitude},
		{"userLatitude", &req.UserLatitude},
		{"venueLongitude", &req.VenueLongitude},
		{"venueLatitude", &req.VenueLatitude},
	}

	for _, f := range fields {
		raw := form.Get(f.key)
		if raw == "" {
			continue
		}

		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidCoordinates, f.key, err)
		}

		*f.dst = &v
	}

	return nil
}
