package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/geocheckin/internal/infra/config"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
	"github.com/mkrupp/geocheckin/internal/infra/transport/http"
	"github.com/mkrupp/geocheckin/internal/repo/store"
	"github.com/mkrupp/geocheckin/internal/repo/user"
	"github.com/mkrupp/geocheckin/internal/repo/venue"
	"github.com/mkrupp/geocheckin/internal/svc/authsvc"
	"github.com/mkrupp/geocheckin/internal/svc/checkinsvc"
	"github.com/mkrupp/geocheckin/internal/svc/sessionsvc"
	"github.com/mkrupp/geocheckin/internal/svc/venuesvc"
)

const (
	appName = "geocheckin"
	svcName = "checkinsvc"
)

type Config struct {
	config.EnvConfig

	Log     logging.LoggerConfig     `envPrefix:"LOG_"`
	HTTP    http.HTTPTransportConfig `envPrefix:"HTTP_"`
	Store   store.SQLiteStoreConfig  `envPrefix:"STORE_"`
	Cookie  http.SessionCookieConfig
	Auth    authsvc.AuthConfig
	CheckIn checkinsvc.CheckInConfig
	Venue   venuesvc.VenueConfig
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.LoadDotEnv(".env"); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.checkinsvc")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
			panic(err)
		}

		log.InfoContext(ctx, "shutdown")
	}()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var (
		users  = user.SQLiteUserRepositoryFactory()
		venues = venue.SQLiteVenueRepositoryFactory()

		sessionSvc = sessionsvc.NewSessionService(st, users)
		authSvc    = authsvc.NewAuthService(st, users, sessionSvc, cfg.Auth)
		checkInSvc = checkinsvc.NewCheckInService(st, sessionSvc, users, venues, cfg.CheckIn)
		venueSvc   = venuesvc.NewVenueService(st, venues, cfg.Venue)
	)

	router := http.NewRouter(sessionSvc, cfg.Cookie,
		authsvc.NewHTTPTransport(authSvc, cfg.Cookie),
		checkinsvc.NewHTTPTransport(checkInSvc),
		venuesvc.NewHTTPTransport(venueSvc),
	)

	if err := http.ListenAndServe(ctx, router, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
