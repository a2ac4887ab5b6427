package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brandpulse/brandpulse/internal/analyzer"
	"github.com/brandpulse/brandpulse/internal/api"
	"github.com/brandpulse/brandpulse/internal/api/handler"
	mw "github.com/brandpulse/brandpulse/internal/api/middleware"
	"github.com/brandpulse/brandpulse/internal/classify"
	classifymock "github.com/brandpulse/brandpulse/internal/classify/mock"
	enginemock "github.com/brandpulse/brandpulse/internal/engine/mock"
	"github.com/brandpulse/brandpulse/internal/orchestrator"
	"github.com/brandpulse/brandpulse/internal/store"
	"github.com/brandpulse/brandpulse/pkg/models"
)

// --- test fixtures ---

var (
	testUserID  = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	testBrandID = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
	testQueryID = uuid.MustParse("cccccccc-cccc-cccc-cccc-cccccccccccc")
	testRawKey  = "bp_test_contract_key_1234567890"
	testPrefix  = testRawKey[:8]
)

func testKeyHash() string {
	h, _ := bcrypt.GenerateFromPassword([]byte(testRawKey), bcrypt.MinCost)
	return string(h)
}

// --- mock store ---

type mockStore struct {
	mu          sync.Mutex
	keys        []*models.APIKey
	users       map[uuid.UUID]*models.User
	brands      map[uuid.UUID]*models.Brand
	competitors []*models.Competitor
	queries     []*models.MonitoredQuery
	results     []*models.QueryResult
}

func newMockStore(tier models.PlanTier) *mockStore {
	return &mockStore{
		keys: []*models.APIKey{{
			ID:        uuid.New(),
			UserID:    testUserID,
			Name:      "test-key",
			KeyHash:   testKeyHash(),
			KeyPrefix: testPrefix,
			Scopes:    []string{"read", "write", "admin"},
		}},
		users: map[uuid.UUID]*models.User{
			testUserID: {ID: testUserID, Email: "test@example.com", PlanTier: tier},
		},
		brands: map[uuid.UUID]*models.Brand{
			testBrandID: {ID: testBrandID, UserID: testUserID, Name: "Notion", Aliases: []string{"Notion HQ"}},
		},
		queries: []*models.MonitoredQuery{{
			ID:        testQueryID,
			BrandID:   testBrandID,
			QueryText: "best project tool?",
			IsActive:  true,
		}},
	}
}

func (s *mockStore) Ping(_ context.Context) error { return nil }

func (s *mockStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (s *mockStore) GetAPIKeyByPrefix(_ context.Context, prefix string) ([]*models.APIKey, error) {
	var out []*models.APIKey
	for _, k := range s.keys {
		if k.KeyPrefix == prefix {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *mockStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }

func (s *mockStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.keys {
		if existing.Name == key.Name && existing.UserID == key.UserID {
			return store.ErrDuplicateKey
		}
	}
	s.keys = append(s.keys, key)
	return nil
}

func (s *mockStore) CreateBrand(_ context.Context, brand *models.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brands[brand.ID] = brand
	return nil
}

func (s *mockStore) GetBrand(_ context.Context, id, userID uuid.UUID) (*models.Brand, error) {
	if b, ok := s.brands[id]; ok && b.UserID == userID {
		return b, nil
	}
	return nil, store.ErrNotFound
}

func (s *mockStore) ListBrands(_ context.Context, userID uuid.UUID) ([]*models.Brand, error) {
	var out []*models.Brand
	for _, b := range s.brands {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *mockStore) UpdateBrand(_ context.Context, brand *models.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.brands[brand.ID]; !ok {
		return store.ErrNotFound
	}
	s.brands[brand.ID] = brand
	return nil
}

func (s *mockStore) DeleteBrand(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.brands[id]; ok && b.UserID == userID {
		delete(s.brands, id)
		return nil
	}
	return store.ErrNotFound
}

func (s *mockStore) CountBrands(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, b := range s.brands {
		if b.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *mockStore) ListBrandsForRun(_ context.Context) ([]*store.BrandForRun, error) {
	return nil, nil
}

func (s *mockStore) CreateCompetitor(_ context.Context, comp *models.Competitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.competitors = append(s.competitors, comp)
	return nil
}

func (s *mockStore) ListCompetitors(_ context.Context, brandID uuid.UUID) ([]*models.Competitor, error) {
	var out []*models.Competitor
	for _, c := range s.competitors {
		if c.BrandID == brandID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *mockStore) DeleteCompetitor(_ context.Context, id, brandID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.competitors {
		if c.ID == id && c.BrandID == brandID {
			s.competitors = append(s.competitors[:i], s.competitors[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *mockStore) CountCompetitors(_ context.Context, brandID uuid.UUID) (int, error) {
	count := 0
	for _, c := range s.competitors {
		if c.BrandID == brandID {
			count++
		}
	}
	return count, nil
}

func (s *mockStore) CreateQuery(_ context.Context, query *models.MonitoredQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return nil
}

func (s *mockStore) GetQuery(_ context.Context, id uuid.UUID) (*models.MonitoredQuery, error) {
	for _, q := range s.queries {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *mockStore) GetQueryForUser(_ context.Context, id, userID uuid.UUID) (*models.MonitoredQuery, error) {
	for _, q := range s.queries {
		if q.ID == id {
			if b, ok := s.brands[q.BrandID]; ok && b.UserID == userID {
				return q, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

func (s *mockStore) ListQueries(_ context.Context, brandID uuid.UUID) ([]*models.MonitoredQuery, error) {
	var out []*models.MonitoredQuery
	for _, q := range s.queries {
		if q.BrandID == brandID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *mockStore) ListActiveQueries(_ context.Context, brandID uuid.UUID) ([]*models.MonitoredQuery, error) {
	var out []*models.MonitoredQuery
	for _, q := range s.queries {
		if q.BrandID == brandID && q.IsActive {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *mockStore) UpdateQuery(_ context.Context, _ *models.MonitoredQuery) error { return nil }
func (s *mockStore) DeleteQuery(_ context.Context, id, brandID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.queries {
		if q.ID == id && q.BrandID == brandID {
			s.queries = append(s.queries[:i], s.queries[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *mockStore) CountQueries(_ context.Context, brandID uuid.UUID) (int, error) {
	count := 0
	for _, q := range s.queries {
		if q.BrandID == brandID {
			count++
		}
	}
	return count, nil
}

func (s *mockStore) CreateQueryResult(_ context.Context, result *models.QueryResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

func (s *mockStore) HasResult(_ context.Context, queryID uuid.UUID, engine models.Engine, runDate time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.results {
		if r.QueryID == queryID && r.Engine == engine && r.RunDate.Equal(runDate) {
			return true, nil
		}
	}
	return false, nil
}

func (s *mockStore) ListResultsByBrand(_ context.Context, brandID uuid.UUID, _ store.ResultFilter) ([]*models.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.QueryResult
	for _, r := range s.results {
		for _, q := range s.queries {
			if q.ID == r.QueryID && q.BrandID == brandID {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (s *mockStore) ListResultsByQuery(_ context.Context, queryID uuid.UUID) ([]*models.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.QueryResult
	for _, r := range s.results {
		if r.QueryID == queryID {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- mock cache ---

type mockCache struct {
	mu        sync.Mutex
	entries   map[string][]byte
	summaries map[uuid.UUID]*models.RunSummary
}

func newMockCache() *mockCache {
	return &mockCache{
		entries:   make(map[string][]byte),
		summaries: make(map[uuid.UUID]*models.RunSummary),
	}
}

func (c *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mockCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *mockCache) Ping(_ context.Context) error { return nil }

func (c *mockCache) SetRunSummary(_ context.Context, summary *models.RunSummary, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *summary
	c.summaries[summary.RunID] = &copied
	return nil
}

func (c *mockCache) GetRunSummary(_ context.Context, runID uuid.UUID) (*models.RunSummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.summaries[runID]
	return s, ok, nil
}

func (c *mockCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

// --- router setup ---

func newTestRouter(t *testing.T, st *mockStore, ca *mockCache) http.Handler {
	t.Helper()

	gateways := map[models.Engine]models.EngineGateway{
		models.EngineOpenAI:    enginemock.NewGateway(models.EngineOpenAI, "Notion is the best."),
		models.EngineAnthropic: enginemock.NewGateway(models.EngineAnthropic, "Try Notion."),
	}
	cls := classifymock.NewClassifier(classify.Classification{Sentiment: models.SentimentPositive})
	orch := orchestrator.New(gateways, analyzer.New(cls), st, ca, 0)

	deps := api.Dependencies{
		Auth:      mw.NewAuth(st),
		RateLimit: mw.NewRateLimit(ca, 60),

		CreateBrand: handler.NewBrandHandlers(st).Create,
		ListBrands:  handler.NewBrandHandlers(st).List,
		GetBrand:    handler.NewBrandHandlers(st).Get,
		UpdateBrand: handler.NewBrandHandlers(st).Update,
		DeleteBrand: handler.NewBrandHandlers(st).Delete,

		CreateCompetitor: handler.NewCompetitorHandlers(st).Create,
		ListCompetitors:  handler.NewCompetitorHandlers(st).List,
		DeleteCompetitor: handler.NewCompetitorHandlers(st).Delete,

		CreateQuery: handler.NewQueryHandlers(st).Create,
		ListQueries: handler.NewQueryHandlers(st).List,
		UpdateQuery: handler.NewQueryHandlers(st).Update,
		DeleteQuery: handler.NewQueryHandlers(st).Delete,

		TriggerRun: handler.NewRunHandlers(orch, ca, st).Trigger,
		RunStatus:  handler.NewRunHandlers(orch, ca, st).Status,

		Overview:      handler.NewInsightHandlers(st, ca).Overview,
		Comparison:    handler.NewInsightHandlers(st, ca).Comparison,
		ResultHistory: handler.NewResultHandlers(st).History,

		CreateKeyHandler: handler.NewKeyHandlers(st).Create,
	}

	return api.NewRouter(deps)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testRawKey)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

// --- auth gate ---

func TestRoutes_RequireAuth(t *testing.T) {
	router := newTestRouter(t, newMockStore(models.PlanPro), newMockCache())

	req := httptest.NewRequest("GET", "/api/v1/brands", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- brands ---

func TestCreateBrand(t *testing.T) {
	st := newMockStore(models.PlanPro)
	router := newTestRouter(t, st, newMockCache())

	w := doRequest(t, router, "POST", "/api/v1/brands", map[string]any{
		"name":    "Acme",
		"aliases": []string{"Acme Inc"},
	})

	require.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "Acme", data["name"])
}

func TestCreateBrand_PlanLimit(t *testing.T) {
	// Free tier allows a single brand and the fixture already has one.
	st := newMockStore(models.PlanFree)
	router := newTestRouter(t, st, newMockCache())

	w := doRequest(t, router, "POST", "/api/v1/brands", map[string]any{"name": "Second"})

	require.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "PLAN_LIMIT_EXCEEDED", body["error"].(map[string]any)["code"])
}

func TestCreateBrand_MissingName(t *testing.T) {
	router := newTestRouter(t, newMockStore(models.PlanPro), newMockCache())

	w := doRequest(t, router, "POST", "/api/v1/brands", map[string]any{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBrand_NotFound(t *testing.T) {
	router := newTestRouter(t, newMockStore(models.PlanPro), newMockCache())

	w := doRequest(t, router, "GET", fmt.Sprintf("/api/v1/brands/%s", uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteBrand(t *testing.T) {
	st := newMockStore(models.PlanPro)
	router := newTestRouter(t, st, newMockCache())

	w := doRequest(t, router, "DELETE", fmt.Sprintf("/api/v1/brands/%s", testBrandID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotContains(t, st.brands, testBrandID)
}

// --- runs ---

func TestTriggerRun_ReturnsAccepted(t *testing.T) {
	st := newMockStore(models.PlanPro)
	ca := newMockCache()
	router := newTestRouter(t, st, ca)

	w := doRequest(t, router, "POST", fmt.Sprintf("/api/v1/brands/%s/runs", testBrandID), nil)

	require.Equal(t, http.StatusAccepted, w.Code)
	data := dataOf(t, w)
	runID, err := uuid.Parse(data["run_id"].(string))
	require.NoError(t, err)

	// Poll run status until terminal.
	deadline := time.Now().Add(5 * time.Second)
	for {
		sw := doRequest(t, router, "GET", fmt.Sprintf("/api/v1/runs/%s", runID), nil)
		require.Equal(t, http.StatusOK, sw.Code)
		status := dataOf(t, sw)["status"].(string)
		if status == models.RunStatusCompleted || status == models.RunStatusCompletedWithErrors {
			assert.Equal(t, models.RunStatusCompleted, status)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("run did not finish in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRunStatus_NotFound(t *testing.T) {
	router := newTestRouter(t, newMockStore(models.PlanPro), newMockCache())

	w := doRequest(t, router, "GET", fmt.Sprintf("/api/v1/runs/%s", uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- insights ---

func TestOverview_NoData(t *testing.T) {
	router := newTestRouter(t, newMockStore(models.PlanPro), newMockCache())

	w := doRequest(t, router, "GET", fmt.Sprintf("/api/v1/brands/%s/overview", testBrandID), nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, false, data["has_data"])
	assert.Equal(t, float64(0), data["mention_rate"])
}

func TestOverview_CachedSecondRead(t *testing.T) {
	st := newMockStore(models.PlanPro)
	ca := newMockCache()
	router := newTestRouter(t, st, ca)

	first := doRequest(t, router, "GET", fmt.Sprintf("/api/v1/brands/%s/overview", testBrandID), nil)
	require.Equal(t, http.StatusOK, first.Code)
	require.NotEmpty(t, ca.entries)

	second := doRequest(t, router, "GET", fmt.Sprintf("/api/v1/brands/%s/overview", testBrandID), nil)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestComparison_NoData(t *testing.T) {
	router := newTestRouter(t, newMockStore(models.PlanPro), newMockCache())

	w := doRequest(t, router, "GET", fmt.Sprintf("/api/v1/brands/%s/comparison", testBrandID), nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, false, data["has_data"])
}

// --- result history ---

func TestResultHistory_OwnershipEnforced(t *testing.T) {
	router := newTestRouter(t, newMockStore(models.PlanPro), newMockCache())

	w := doRequest(t, router, "GET", fmt.Sprintf("/api/v1/queries/%s/results", uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResultHistory_Empty(t *testing.T) {
	router := newTestRouter(t, newMockStore(models.PlanPro), newMockCache())

	w := doRequest(t, router, "GET", fmt.Sprintf("/api/v1/queries/%s/results", testQueryID), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body["data"])
}

// --- api keys ---

func TestCreateKey_ReturnsRawKeyOnce(t *testing.T) {
	st := newMockStore(models.PlanPro)
	router := newTestRouter(t, st, newMockCache())

	w := doRequest(t, router, "POST", "/api/v1/admin/keys", map[string]any{"name": "ci-key"})

	require.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	raw := data["key"].(string)
	assert.True(t, len(raw) > 8)
	assert.Equal(t, raw[:8], data["key_prefix"])
}

func TestCreateKey_DuplicateName(t *testing.T) {
	st := newMockStore(models.PlanPro)
	router := newTestRouter(t, st, newMockCache())

	first := doRequest(t, router, "POST", "/api/v1/admin/keys", map[string]any{"name": "dup"})
	require.Equal(t, http.StatusCreated, first.Code)

	second := doRequest(t, router, "POST", "/api/v1/admin/keys", map[string]any{"name": "dup"})
	assert.Equal(t, http.StatusConflict, second.Code)
}
