// Package seed provides the built-in sample dataset. It stands in for
// the external data-provisioning collaborator until a real listing feed
// is connected.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pxlcrtiv/zillow-like-property-search/internal/domain"
)

//go:embed listings.json
var seedFS embed.FS

// Store is the subset of the repository the seeder needs
type Store interface {
	CountListings(ctx context.Context) (int, error)
	UpsertListing(ctx context.Context, l *domain.Listing) error
}

// Listings returns the embedded sample dataset
func Listings() ([]domain.Listing, error) {
	data, err := seedFS.ReadFile("listings.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded seed: %w", err)
	}
	return parse(data)
}

// ListingsFromFile reads a listing dataset from an external JSON file,
// for callers that bring their own data instead of the built-in sample.
func ListingsFromFile(path string) ([]domain.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) ([]domain.Listing, error) {
	var listings []domain.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	for i := range listings {
		if !listings[i].PropertyType.Valid() {
			return nil, fmt.Errorf("listing %q: unknown property type %q", listings[i].ID, listings[i].PropertyType)
		}
		if listings[i].Status == "" {
			listings[i].Status = domain.StatusForSale
		}
		if !listings[i].Status.Valid() {
			return nil, fmt.Errorf("listing %q: unknown status %q", listings[i].ID, listings[i].Status)
		}
	}
	return listings, nil
}

// Load populates an empty repository with listings. A repository that
// already holds data is left untouched so favorite flags survive
// restarts. Returns the number of listings inserted.
func Load(ctx context.Context, store Store, listings []domain.Listing) (int, error) {
	count, err := store.CountListings(ctx)
	if err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	inserted := 0
	for i := range listings {
		if err := store.UpsertListing(ctx, &listings[i]); err != nil {
			return inserted, fmt.Errorf("seed listing %q: %w", listings[i].ID, err)
		}
		inserted++
	}
	return inserted, nil
}
