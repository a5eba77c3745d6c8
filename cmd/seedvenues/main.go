package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/infra/config"
	"github.com/mkrupp/geocheckin/internal/infra/logging"
	"github.com/mkrupp/geocheckin/internal/repo/store"
	"github.com/mkrupp/geocheckin/internal/repo/venue"
	"github.com/mkrupp/geocheckin/internal/svc/venuesvc"
)

const (
	appName = "geocheckin"
	svcName = "seedvenues"
)

type Config struct {
	config.EnvConfig

	Log   logging.LoggerConfig    `envPrefix:"LOG_"`
	Store store.SQLiteStoreConfig `envPrefix:"STORE_"`

	// SeedFile is the JSON file holding the venues to insert
	SeedFile string `env:"SEED_FILE" default:"var/seed/venues.json"`
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

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.seedvenues").With("file", cfg.SeedFile)

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
			panic(err)
		}
	}()

	data, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seeds []domain.VenueSeed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	venueSvc := venuesvc.NewVenueService(st, venue.SQLiteVenueRepositoryFactory(), venuesvc.VenueConfig{})

	n, err := venueSvc.Seed(ctx, seeds)
	if err != nil {
		return fmt.Errorf("seed venues: %w", err)
	}

	log.InfoContext(ctx, "seed complete", "venues", len(seeds), "inserted", n)

	return nil
}
