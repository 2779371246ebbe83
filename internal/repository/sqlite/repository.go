package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/domain"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Repository is the authoritative listing store. The favorite flag is
// the only column ever updated after a listing is created.
type Repository struct {
	db      *sql.DB
	version atomic.Uint64
}

// New creates a new SQLite repository and runs migrations
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable foreign keys and WAL mode
	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Version returns a counter that increments on every mutation. Result
// caches key on it so stale entries can never be served.
func (r *Repository) Version() uint64 {
	return r.version.Load()
}

func (r *Repository) migrate() error {
	migration, err := migrationsFS.ReadFile("migrations/001_initial.sql")
	if err != nil {
		return err
	}
	_, err = r.db.Exec(string(migration))
	return err
}

// UpsertListing inserts a listing or refreshes its write-once fields.
// A listing arriving without an id is assigned one. The favorite flag
// is deliberately left alone on conflict.
func (r *Repository) UpsertListing(ctx context.Context, l *domain.Listing) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	images, _ := json.Marshal(l.Images)
	features, _ := json.Marshal(l.Features)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO listings (
			id, title, description, address, city, state, zip_code,
			price, bedrooms, bathrooms, sqft, property_type, status,
			year_built, images, features, agent_name, agent_phone,
			agent_email, agent_photo, lat, lng, listed_date, is_favorite
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			address = excluded.address,
			city = excluded.city,
			state = excluded.state,
			zip_code = excluded.zip_code,
			price = excluded.price,
			bedrooms = excluded.bedrooms,
			bathrooms = excluded.bathrooms,
			sqft = excluded.sqft,
			property_type = excluded.property_type,
			status = excluded.status,
			year_built = excluded.year_built,
			images = excluded.images,
			features = excluded.features,
			agent_name = excluded.agent_name,
			agent_phone = excluded.agent_phone,
			agent_email = excluded.agent_email,
			agent_photo = excluded.agent_photo,
			lat = excluded.lat,
			lng = excluded.lng,
			listed_date = excluded.listed_date,
			updated_at = CURRENT_TIMESTAMP
	`,
		l.ID, l.Title, l.Description, l.Address, l.City, l.State, l.ZipCode,
		l.Price, l.Bedrooms, l.Bathrooms, l.Sqft, string(l.PropertyType),
		string(l.Status), l.YearBuilt, string(images), string(features),
		l.Agent.Name, l.Agent.Phone, l.Agent.Email, l.Agent.Photo,
		l.Coordinates.Lat, l.Coordinates.Lng, l.ListedDate, l.IsFavorite,
	)
	if err != nil {
		return err
	}
	r.version.Add(1)
	return nil
}

// GetAllListings returns every listing in insertion order
func (r *Repository) GetAllListings(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, address, city, state, zip_code,
			price, bedrooms, bathrooms, sqft, property_type, status,
			year_built, images, features, agent_name, agent_phone,
			agent_email, agent_photo, lat, lng, listed_date, is_favorite
		FROM listings ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

// GetListing retrieves a listing by id. Returns nil without error when
// no listing has that id.
func (r *Repository) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, address, city, state, zip_code,
			price, bedrooms, bathrooms, sqft, property_type, status,
			year_built, images, features, agent_name, agent_phone,
			agent_email, agent_photo, lat, lng, listed_date, is_favorite
		FROM listings WHERE id = ?
	`, id)

	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ToggleFavorite flips the favorite flag on the listing with the given
// id. An unknown id is a no-op, not an error; the returned bool reports
// whether a listing was actually toggled.
func (r *Repository) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE listings SET is_favorite = 1 - is_favorite, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}
	r.version.Add(1)
	return true, nil
}

// CountListings returns the number of stored listings
func (r *Repository) CountListings(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count)
	return count, err
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanListing(s scanner) (*domain.Listing, error) {
	var l domain.Listing
	var images, features sql.NullString
	var propertyType, status string

	err := s.Scan(
		&l.ID, &l.Title, &l.Description, &l.Address, &l.City, &l.State,
		&l.ZipCode, &l.Price, &l.Bedrooms, &l.Bathrooms, &l.Sqft,
		&propertyType, &status, &l.YearBuilt, &images, &features,
		&l.Agent.Name, &l.Agent.Phone, &l.Agent.Email, &l.Agent.Photo,
		&l.Coordinates.Lat, &l.Coordinates.Lng, &l.ListedDate, &l.IsFavorite,
	)
	if err != nil {
		return nil, err
	}

	l.PropertyType = domain.PropertyType(propertyType)
	l.Status = domain.ListingStatus(status)
	if images.Valid {
		json.Unmarshal([]byte(images.String), &l.Images)
	}
	if features.Valid {
		json.Unmarshal([]byte(features.String), &l.Features)
	}
	return &l, nil
}
