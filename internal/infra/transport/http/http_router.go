package http

import (
	"net/http"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
)

// RouteRegistrar is implemented by service transports that contribute routes.
type RouteRegistrar interface {
	RegisterRoutes(rt *Router)
}

// Router dispatches requests to the service transports. Routes registered
// with HandleAuthorized sit behind SessionMiddleware. Anything unmatched
// gets a JSON 404.
type Router struct {
	mux      *http.ServeMux
	sessions SessionValidator
	cookie   SessionCookieConfig
	log      logging.Logger
}

var _ HTTPTransport = (*Router)(nil)

// NewRouter creates a Router with the given transports registered.
func NewRouter(sessions SessionValidator, cookie SessionCookieConfig, transports ...RouteRegistrar) *Router {
	rt := &Router{
		mux:      http.NewServeMux(),
		sessions: sessions,
		cookie:   cookie,
		log:      logging.GetLogger("infra.transport.http.router"),
	}

	rt.mux.HandleFunc("/", rt.handleNotFound)

	for _, t := range transports {
		t.RegisterRoutes(rt)
	}

	return rt
}

// Handle registers a public route.
func (rt *Router) Handle(pattern string, handler http.Handler) {
	rt.mux.Handle(pattern, handler)
}

// HandleAuthorized registers a route that requires a valid session.
func (rt *Router) HandleAuthorized(pattern string, handler http.Handler) {
	rt.mux.Handle(pattern, SessionMiddleware(handler, rt.sessions, rt.cookie, rt.log))
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

func (rt *Router) handleNotFound(w http.ResponseWriter, r *http.Request) {
	resp := domain.ErrorResponse{Message: MessageNotFound, Error: string(KindNotFound)}

	if err := WriteJSON(w, http.StatusNotFound, resp); err != nil {
		rt.log.ErrorContext(r.Context(), "write not found failed", "error", err)
	}
}
