// Package session holds the per-user browsing state: free-text query,
// search criteria, detail selection and view mode. Every edit re-derives
// the visible result set synchronously, so the displayed subset is
// always a pure function of the current inputs.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pxlcrtiv/zillow-like-property-search/internal/domain"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/filter"
)

// ErrUnknownListing is returned when a selection targets an id the
// repository does not hold.
var ErrUnknownListing = errors.New("unknown listing id")

// ErrInvalidViewMode is returned for a view mode outside {grid, list}.
var ErrInvalidViewMode = errors.New("invalid view mode")

// ListingStore is the repository surface the session depends on
type ListingStore interface {
	GetAllListings(ctx context.Context) ([]domain.Listing, error)
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	Version() uint64
}

// Session is a single user's browsing state. Mutators serialize through
// an internal mutex, preserving the one-event-at-a-time model even when
// driven from concurrent HTTP handlers.
type Session struct {
	mu     sync.Mutex
	store  ListingStore
	engine *filter.Engine
	cache  *filter.ResultCache
	logger *slog.Logger

	query    string
	criteria domain.SearchCriteria
	selected string
	viewMode domain.ViewMode
}

// New creates a session with default criteria, grid view and nothing
// selected. The cache is optional; pass nil to evaluate directly.
func New(store ListingStore, engine *filter.Engine, cache *filter.ResultCache, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:    store,
		engine:   engine,
		cache:    cache,
		logger:   logger,
		criteria: domain.DefaultCriteria(),
		viewMode: domain.ViewModeGrid,
	}
}

// Snapshot is the session state handed to the presentation layer
type Snapshot struct {
	Query    string                `json:"query"`
	Criteria domain.SearchCriteria `json:"criteria"`
	ViewMode domain.ViewMode       `json:"view_mode"`
	Selected *domain.Listing       `json:"selected,omitempty"`
	Results  []domain.Listing      `json:"results"`
}

// SetQuery replaces the free-text query and returns the re-derived
// result set.
func (s *Session) SetQuery(ctx context.Context, query string) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	return s.resultsLocked(ctx)
}

// SetCriteria replaces the structured criteria and returns the
// re-derived result set.
func (s *Session) SetCriteria(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = criteria
	return s.resultsLocked(ctx)
}

// ToggleBedroom flips a bedroom count in the selector and returns the
// re-derived result set.
func (s *Session) ToggleBedroom(ctx context.Context, count int) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.Bedrooms = domain.ToggleValue(s.criteria.Bedrooms, count)
	return s.resultsLocked(ctx)
}

// ToggleBathroom flips a bathroom count in the selector and returns the
// re-derived result set.
func (s *Session) ToggleBathroom(ctx context.Context, count int) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.Bathrooms = domain.ToggleValue(s.criteria.Bathrooms, count)
	return s.resultsLocked(ctx)
}

// TogglePropertyType flips a property type in the selector and returns
// the re-derived result set.
func (s *Session) TogglePropertyType(ctx context.Context, t domain.PropertyType) ([]domain.Listing, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown property type %q", t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.PropertyTypes = domain.ToggleValue(s.criteria.PropertyTypes, t)
	return s.resultsLocked(ctx)
}

// ClearCriteria resets the criteria to the defaults and blanks the
// free-text query, which is tracked here rather than in the criteria.
func (s *Session) ClearCriteria(ctx context.Context) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = s.criteria.Clear()
	s.query = ""
	return s.resultsLocked(ctx)
}

// ToggleFavorite flips the favorite flag on a listing and returns the
// refreshed result set. An unknown id leaves the repository untouched.
func (s *Session) ToggleFavorite(ctx context.Context, id string) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	toggled, err := s.store.ToggleFavorite(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("toggle favorite: %w", err)
	}
	if !toggled {
		s.logger.Debug("favorite toggle ignored", "listing_id", id)
	}
	return s.resultsLocked(ctx)
}

// Select opens a listing in the detail view
func (s *Session) Select(ctx context.Context, id string) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, err := s.store.GetListing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	if listing == nil {
		return nil, ErrUnknownListing
	}
	s.selected = id
	return listing, nil
}

// ClearSelection closes the detail view
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
}

// SetViewMode switches between grid and list presentation
func (s *Session) SetViewMode(mode domain.ViewMode) error {
	if !mode.Valid() {
		return ErrInvalidViewMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewMode = mode
	return nil
}

// ViewMode returns the current presentation mode
func (s *Session) ViewMode() domain.ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewMode
}

// Results returns the visible listing subset for the current query and
// criteria.
func (s *Session) Results(ctx context.Context) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultsLocked(ctx)
}

// Snapshot returns the full session state for rendering
func (s *Session) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := s.resultsLocked(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Query:    s.query,
		Criteria: s.criteria,
		ViewMode: s.viewMode,
		Results:  results,
	}
	if s.selected != "" {
		listing, err := s.store.GetListing(ctx, s.selected)
		if err != nil {
			return nil, fmt.Errorf("get selected listing: %w", err)
		}
		// Selection may point at a listing that has since disappeared;
		// render it as closed rather than failing.
		snap.Selected = listing
	}
	return snap, nil
}

// Explain reports why a listing is in or out of the current result set
func (s *Session) Explain(ctx context.Context, id string) (*filter.MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, err := s.store.GetListing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	if listing == nil {
		return nil, ErrUnknownListing
	}
	result := s.engine.Match(listing, s.query, s.criteria)
	return &result, nil
}

func (s *Session) resultsLocked(ctx context.Context) ([]domain.Listing, error) {
	var key string
	if s.cache != nil {
		key = s.cache.Key(s.query, s.criteria, s.store.Version())
		if results, ok := s.cache.Get(key); ok {
			return results, nil
		}
	}

	listings, err := s.store.GetAllListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}

	results := s.engine.Evaluate(listings, s.query, s.criteria)
	if s.cache != nil {
		s.cache.Set(key, results)
	}
	return results, nil
}
