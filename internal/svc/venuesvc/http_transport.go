package venuesvc

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/geo"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
	http_ "github.com/mkrupp/geocheckin/internal/infra/transport/http"
)

// HTTPTransport handles HTTP requests for the venue service.
type HTTPTransport struct {
	venueSvc *VenueService
	log      logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(venueSvc *VenueService) *HTTPTransport {
	return &HTTPTransport{
		venueSvc: venueSvc,
		log:      logging.GetLogger("svc.venuesvc.http_transport"),
	}
}

// RegisterRoutes sets up the authorized venue routes:
// - GET /api/nearByVenues: venues around longitude/latitude
// - GET /api/popularVenues: the most checked-in venues
// - GET /api/nearByUsers: venues around longitude/latitude with their visitors.
func (ht *HTTPTransport) RegisterRoutes(rt *http_.Router) {
	rt.HandleAuthorized("GET /api/nearByVenues", ht.handler("nearby venues", ht.handleNearbyVenues))
	rt.HandleAuthorized("GET /api/popularVenues", ht.handler("popular venues", ht.handlePopularVenues))
	rt.HandleAuthorized("GET /api/nearByUsers", ht.handler("nearby users", ht.handleNearbyUsers))
}

var _ http_.RouteRegistrar = (*HTTPTransport)(nil)

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (ht *HTTPTransport) handler(name string, fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

		if err := fn(w, r); err != nil {
			log.ErrorContext(r.Context(), name+" request failed", "error", err)
			http_.WriteError(w, r, log, err)

			return
		}

		log.DebugContext(r.Context(), name+" request handled")
	})
}

func parseOrigin(r *http.Request) (geo.Point, error) {
	query := r.URL.Query()

	lng, err := strconv.ParseFloat(query.Get("longitude"), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: longitude: %w", domain.ErrInvalidCoordinates, err)
	}

	lat, err := strconv.ParseFloat(query.Get("latitude"), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: latitude: %w", domain.ErrInvalidCoordinates, err)
	}

	return geo.Point{Longitude: lng, Latitude: lat}, nil
}

func (ht *HTTPTransport) handleNearbyVenues(w http.ResponseWriter, r *http.Request) error {
	origin, err := parseOrigin(r)
	if err != nil {
		return err
	}

	venues, err := ht.venueSvc.NearbyVenues(r.Context(), origin)
	if err != nil {
		return fmt.Errorf("nearby venues: %w", err)
	}

	resp := domain.NearbyVenuesResponse{Venues: make([]domain.VenueResponse, 0, len(venues))}
	for _, v := range venues {
		resp.Venues = append(resp.Venues, domain.NewVenueResponse(v))
	}

	return ht.write(w, r, resp)
}

func (ht *HTTPTransport) handlePopularVenues(w http.ResponseWriter, r *http.Request) error {
	venues, err := ht.venueSvc.TopVenues(r.Context(), ht.venueSvc.Config.PopularLimit)
	if err != nil {
		return fmt.Errorf("top venues: %w", err)
	}

	resp := make([]domain.VenueSummary, 0, len(venues))
	for _, v := range venues {
		resp = append(resp, domain.NewVenueSummary(v))
	}

	return ht.write(w, r, resp)
}

func (ht *HTTPTransport) handleNearbyUsers(w http.ResponseWriter, r *http.Request) error {
	origin, err := parseOrigin(r)
	if err != nil {
		return err
	}

	venues, err := ht.venueSvc.NearbyVisitors(r.Context(), origin)
	if err != nil {
		return fmt.Errorf("nearby visitors: %w", err)
	}

	resp := make([]domain.VenueVisitors, 0, len(venues))
	for _, v := range venues {
		resp = append(resp, domain.NewVenueVisitors(v))
	}

	return ht.write(w, r, resp)
}

// write sends resp. A failed write is only logged since the status is already out.
func (ht *HTTPTransport) write(w http.ResponseWriter, r *http.Request, resp any) error {
	if err := http_.WriteJSON(w, http.StatusOK, resp); err != nil {
		ht.log.ErrorContext(r.Context(), "write response failed", "error", err)
	}

	return nil
}
