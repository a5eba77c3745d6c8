package venue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mkrupp/geocheckin/internal/domain"
	"github.com/mkrupp/geocheckin/internal/geo"
	"github.com/mkrupp/geocheckin/internal/repo/store"
)

// SQLiteVenueRepository implements Repository using SQLite as the storage backend.
// Radius queries prefilter on a bounding box in SQL and apply the exact
// great-circle distance in Go.
type SQLiteVenueRepository struct {
	db store.DBTX
}

var _ Repository = (*SQLiteVenueRepository)(nil)

// SQLiteVenueRepositoryFactory returns a RepositoryFactory producing SQLiteVenueRepository values.
func SQLiteVenueRepositoryFactory() RepositoryFactory {
	return func(db store.DBTX) Repository {
		return NewSQLiteVenueRepository(db)
	}
}

// NewSQLiteVenueRepository creates a new SQLiteVenueRepository bound to db.
func NewSQLiteVenueRepository(db store.DBTX) *SQLiteVenueRepository {
	return &SQLiteVenueRepository{db: db}
}

// CreateVenue implements Repository.CreateVenue using SQLite.
func (r *SQLiteVenueRepository) CreateVenue(
	ctx context.Context,
	name string,
	location geo.Point,
) (*domain.Venue, bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO venues (name, longitude, latitude) VALUES (?, ?, ?)
		ON CONFLICT (name, longitude, latitude) DO NOTHING`,
		name,
		location.Longitude,
		location.Latitude,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert venue: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return nil, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}

	return &domain.Venue{
		ID:         id,
		Name:       name,
		Location:   location,
		VisitorLog: []string{},
	}, true, nil
}

// FindNear implements Repository.FindNear using SQLite.
func (r *SQLiteVenueRepository) FindNear(
	ctx context.Context,
	origin geo.Point,
	maxMeters float64,
) ([]domain.Venue, error) {
	venues, err := r.findNear(ctx, origin, maxMeters, "")
	if err != nil {
		return nil, err
	}

	if err := r.loadVisitors(ctx, venues); err != nil {
		return nil, err
	}

	return venues, nil
}

// FindNearByName implements Repository.FindNearByName using SQLite.
func (r *SQLiteVenueRepository) FindNearByName(
	ctx context.Context,
	name string,
	origin geo.Point,
	maxMeters float64,
) (*domain.Venue, bool, error) {
	venues, err := r.findNear(ctx, origin, maxMeters, name)
	if err != nil {
		return nil, false, err
	}

	if len(venues) == 0 {
		return nil, false, nil
	}

	venues = venues[:1]

	if err := r.loadVisitors(ctx, venues); err != nil {
		return nil, false, err
	}

	return &venues[0], true, nil
}

// AddVisitor implements Repository.AddVisitor using SQLite.
func (r *SQLiteVenueRepository) AddVisitor(ctx context.Context, venueID int64, email string) error {
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO venue_visitors (venue_id, email, checked_in_at) VALUES (?, ?, ?)",
		venueID,
		email,
		time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("insert visitor: %w", err)
	}

	return nil
}

// TopVenues implements Repository.TopVenues using SQLite.
func (r *SQLiteVenueRepository) TopVenues(ctx context.Context, k int) ([]domain.Venue, error) {
	if k <= 0 {
		return []domain.Venue{}, nil
	}

	venues, err := r.queryVenues(ctx, `
		SELECT v.id, v.name, v.longitude, v.latitude
		FROM venues v LEFT JOIN venue_visitors vv ON vv.venue_id = v.id
		GROUP BY v.id
		ORDER BY COUNT(vv.id) DESC, v.id ASC
		LIMIT ?`,
		k,
	)
	if err != nil {
		return nil, err
	}

	if err := r.loadVisitors(ctx, venues); err != nil {
		return nil, err
	}

	return venues, nil
}

// findNear returns venues within maxMeters of origin ordered by distance,
// optionally restricted to a name. Visitor logs are not loaded.
func (r *SQLiteVenueRepository) findNear(
	ctx context.Context,
	origin geo.Point,
	maxMeters float64,
	name string,
) ([]domain.Venue, error) {
	if maxMeters < 0 {
		return []domain.Venue{}, nil
	}

	box := geo.BoundingBoxAround(origin, maxMeters)

	var (
		query strings.Builder
		args  = []any{box.MinLat, box.MaxLat}
	)

	query.WriteString("SELECT id, name, longitude, latitude FROM venues WHERE latitude BETWEEN ? AND ? AND (")

	for i, lng := range box.Lng {
		if i > 0 {
			query.WriteString(" OR ")
		}

		query.WriteString("longitude BETWEEN ? AND ?")

		args = append(args, lng.Min, lng.Max)
	}

	query.WriteString(")")

	if name != "" {
		query.WriteString(" AND name = ?")

		args = append(args, name)
	}

	// Id order makes equal distances come out oldest first.
	query.WriteString(" ORDER BY id")

	candidates, err := r.queryVenues(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}

	near := geo.FindNear(origin, maxMeters, candidates, func(v domain.Venue) geo.Point {
		return v.Location
	})

	venues := make([]domain.Venue, 0, len(near))
	for _, n := range near {
		venues = append(venues, n.Item)
	}

	return venues, nil
}

func (r *SQLiteVenueRepository) queryVenues(ctx context.Context, query string, args ...any) ([]domain.Venue, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query venues: %w", err)
	}
	defer rows.Close()

	venues := []domain.Venue{}

	for rows.Next() {
		v := domain.Venue{VisitorLog: []string{}}
		if err := rows.Scan(&v.ID, &v.Name, &v.Location.Longitude, &v.Location.Latitude); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}

		venues = append(venues, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate venues: %w", err)
	}

	return venues, nil
}

// loadVisitors fills the visitor log of every venue in place.
func (r *SQLiteVenueRepository) loadVisitors(ctx context.Context, venues []domain.Venue) error {
	if len(venues) == 0 {
		return nil
	}

	index := make(map[int64]int, len(venues))
	args := make([]any, 0, len(venues))

	for i, v := range venues {
		index[v.ID] = i
		args = append(args, v.ID)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(venues)), ",")

	rows, err := r.db.QueryContext(ctx,
		"SELECT venue_id, email FROM venue_visitors WHERE venue_id IN ("+placeholders+") ORDER BY id",
		args...,
	)
	if err != nil {
		return fmt.Errorf("query visitors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			venueID int64
			email   string
		)

		if err := rows.Scan(&venueID, &email); err != nil {
			return fmt.Errorf("scan visitor: %w", err)
		}

		if i, ok := index[venueID]; ok {
			venues[i].VisitorLog = append(venues[i].VisitorLog, email)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate visitors: %w", err)
	}

	return nil
}
