package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/domain"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/filter"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/session"
)

type fakeStore struct {
	listings []domain.Listing
	version  uint64
}

func (s *fakeStore) GetAllListings(ctx context.Context) ([]domain.Listing, error) {
	out := make([]domain.Listing, len(s.listings))
	copy(out, s.listings)
	return out, nil
}

func (s *fakeStore) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	for _, l := range s.listings {
		if l.ID == id {
			found := l
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	for i := range s.listings {
		if s.listings[i].ID == id {
			s.listings[i].IsFavorite = !s.listings[i].IsFavorite
			s.version++
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) Version() uint64 {
	return s.version
}

func newTestRouter() (*gin.Engine, *fakeStore) {
	gin.SetMode(gin.TestMode)
	store := &fakeStore{
		listings: []domain.Listing{
			{ID: "1", Title: "Modern Luxury Home", City: "Austin", State: "TX", ZipCode: "78701",
				Price: 899000, Bedrooms: 4, Bathrooms: 3, Sqft: 2800, PropertyType: domain.PropertyTypeHouse},
			{ID: "2", Title: "Downtown Luxury Condo", City: "Austin", State: "TX", ZipCode: "78702",
				Price: 650000, Bedrooms: 2, Bathrooms: 2, Sqft: 1800, PropertyType: domain.PropertyTypeCondo},
			{ID: "3", Title: "Stylish Studio Apartment", City: "Austin", State: "TX", ZipCode: "78705",
				Price: 285000, Bedrooms: 1, Bathrooms: 1, Sqft: 850, PropertyType: domain.PropertyTypeApartment},
		},
	}
	engine := filter.NewEngine()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.New(store, engine, nil, logger)
	return New(sess, store, engine, logger, "*"), store
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type searchResponse struct {
	Total   int              `json:"total"`
	Results []domain.Listing `json:"results"`
}

func decodeSearch(t *testing.T, w *httptest.ResponseRecorder) searchResponse {
	t.Helper()
	var resp searchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter()
	w := doRequest(t, router, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSearchListingsUnconstrained(t *testing.T) {
	router, _ := newTestRouter()

	w := doRequest(t, router, http.MethodGet, "/api/listings", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decodeSearch(t, w)
	if resp.Total != 3 {
		t.Errorf("expected all 3 listings, got %d", resp.Total)
	}
}

func TestSearchListingsWithQuery(t *testing.T) {
	router, _ := newTestRouter()

	resp := decodeSearch(t, doRequest(t, router, http.MethodGet, "/api/listings?q=condo", ""))
	if resp.Total != 1 || resp.Results[0].ID != "2" {
		t.Errorf("expected only the condo, got %+v", resp.Results)
	}
}

func TestSearchListingsMalformedNumericsCoerced(t *testing.T) {
	router, _ := newTestRouter()

	// Unparseable bounds fall back to the defaults instead of erroring
	w := doRequest(t, router, http.MethodGet, "/api/listings?min_price=abc&max_price=-5&min_sqft=x&max_sqft=", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decodeSearch(t, w)
	if resp.Total != 3 {
		t.Errorf("coerced defaults should match everything, got %d", resp.Total)
	}
}

func TestSearchListingsSelectorParsing(t *testing.T) {
	router, _ := newTestRouter()

	// Non-numeric entries are dropped, the rest filter exactly
	resp := decodeSearch(t, doRequest(t, router, http.MethodGet, "/api/listings?bedrooms=2,x", ""))
	if resp.Total != 1 || resp.Results[0].ID != "2" {
		t.Errorf("expected only the 2-bedroom listing, got %+v", resp.Results)
	}

	// Unknown type tags are dropped from the closed enumeration
	resp = decodeSearch(t, doRequest(t, router, http.MethodGet, "/api/listings?types=condo,castle", ""))
	if resp.Total != 1 || resp.Results[0].ID != "2" {
		t.Errorf("expected only the condo, got %+v", resp.Results)
	}
}

func TestSearchListingsPriceBand(t *testing.T) {
	router, _ := newTestRouter()

	resp := decodeSearch(t, doRequest(t, router, http.MethodGet, "/api/listings?min_price=600000&max_price=900000", ""))
	if resp.Total != 2 {
		t.Errorf("expected 2 listings in the band, got %d", resp.Total)
	}
}

func TestGetListing(t *testing.T) {
	router, _ := newTestRouter()

	w := doRequest(t, router, http.MethodGet, "/api/listings/2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var l domain.Listing
	if err := json.Unmarshal(w.Body.Bytes(), &l); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if l.ID != "2" {
		t.Errorf("expected listing 2, got %q", l.ID)
	}

	if w := doRequest(t, router, http.MethodGet, "/api/listings/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", w.Code)
	}
}

func TestToggleFavoriteEndpoint(t *testing.T) {
	router, store := newTestRouter()

	w := doRequest(t, router, http.MethodPost, "/api/listings/1/favorite", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !store.listings[0].IsFavorite {
		t.Error("favorite flag should be set in the store")
	}

	// Unknown id is a no-op, not an error
	w = doRequest(t, router, http.MethodPost, "/api/listings/missing/favorite", "")
	if w.Code != http.StatusOK {
		t.Errorf("unknown id toggle should return 200, got %d", w.Code)
	}
}

func TestDefaultCriteriaEndpoint(t *testing.T) {
	router, _ := newTestRouter()

	w := doRequest(t, router, http.MethodGet, "/api/criteria/defaults", "")
	var criteria domain.SearchCriteria
	if err := json.Unmarshal(w.Body.Bytes(), &criteria); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if criteria.MaxPrice != domain.DefaultMaxPrice || criteria.MaxSqft != domain.DefaultMaxSqft {
		t.Errorf("unexpected defaults: %+v", criteria)
	}
}

func TestSessionQueryFlow(t *testing.T) {
	router, _ := newTestRouter()

	w := doRequest(t, router, http.MethodPut, "/api/session/query", `{"query":"apartment"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var snap session.Snapshot
	w = doRequest(t, router, http.MethodGet, "/api/session", "")
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Query != "apartment" {
		t.Errorf("expected query to stick, got %q", snap.Query)
	}
	if len(snap.Results) != 1 || snap.Results[0].ID != "3" {
		t.Errorf("expected only the apartment, got %+v", snap.Results)
	}
}

func TestSessionCriteriaClear(t *testing.T) {
	router, _ := newTestRouter()

	doRequest(t, router, http.MethodPut, "/api/session/query", `{"query":"condo"}`)
	doRequest(t, router, http.MethodPut, "/api/session/criteria", `{"max_price":300000}`)

	w := doRequest(t, router, http.MethodPost, "/api/session/criteria/clear", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var snap session.Snapshot
	w = doRequest(t, router, http.MethodGet, "/api/session", "")
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Query != "" {
		t.Errorf("clear should blank the query, got %q", snap.Query)
	}
	if len(snap.Results) != 3 {
		t.Errorf("clear should restore the full set, got %d", len(snap.Results))
	}
}

func TestSessionCriteriaPartialBodyUsesDefaults(t *testing.T) {
	router, _ := newTestRouter()

	// Only min_price supplied; the ceiling must stay at the default
	// rather than collapsing to zero.
	w := doRequest(t, router, http.MethodPut, "/api/session/criteria", `{"min_price":600000}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp searchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("expected the two listings above 600000, got %d", len(resp.Results))
	}
}

func TestSessionSelectorToggles(t *testing.T) {
	router, _ := newTestRouter()

	w := doRequest(t, router, http.MethodPost, "/api/session/criteria/bedrooms", `{"value":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp searchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "2" {
		t.Errorf("expected only the 2-bedroom listing, got %+v", resp.Results)
	}

	// Second toggle removes the constraint again
	w = doRequest(t, router, http.MethodPost, "/api/session/criteria/bedrooms", `{"value":2}`)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Errorf("double toggle should restore the full set, got %d", len(resp.Results))
	}

	if w := doRequest(t, router, http.MethodPost, "/api/session/criteria/types", `{"value":"castle"}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown type, got %d", w.Code)
	}
}

func TestSessionViewMode(t *testing.T) {
	router, _ := newTestRouter()

	if w := doRequest(t, router, http.MethodPut, "/api/session/view", `{"mode":"list"}`); w.Code != http.StatusOK {
		t.Errorf("expected 200 for list mode, got %d", w.Code)
	}
	if w := doRequest(t, router, http.MethodPut, "/api/session/view", `{"mode":"carousel"}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown mode, got %d", w.Code)
	}
}

func TestSessionSelection(t *testing.T) {
	router, _ := newTestRouter()

	if w := doRequest(t, router, http.MethodPut, "/api/session/selection", `{"id":"2"}`); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w := doRequest(t, router, http.MethodPut, "/api/session/selection", `{"id":"missing"}`); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", w.Code)
	}
	if w := doRequest(t, router, http.MethodDelete, "/api/session/selection", ""); w.Code != http.StatusNoContent {
		t.Errorf("expected 204 on clear, got %d", w.Code)
	}
}

func TestExplainEndpoint(t *testing.T) {
	router, _ := newTestRouter()

	doRequest(t, router, http.MethodPut, "/api/session/criteria", `{"max_price":300000}`)

	w := doRequest(t, router, http.MethodGet, "/api/listings/1/match", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Passed  bool     `json:"passed"`
		Reasons []string `json:"reasons"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Passed {
		t.Error("expensive listing should fail the lowered ceiling")
	}
	if len(resp.Reasons) == 0 {
		t.Error("expected filter reasons")
	}

	if w := doRequest(t, router, http.MethodGet, "/api/listings/missing/match", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", w.Code)
	}
}
