package tickers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobapps/gob-api/internal/api/middleware"
	"github.com/gobapps/gob-api/internal/types"
)

const token = "s3cret"

type memStore struct {
	mu   sync.Mutex
	rows map[string]types.TickerRegistryRow
}

func newMemStore(rows ...types.TickerRegistryRow) *memStore {
	m := &memStore{rows: map[string]types.TickerRegistryRow{}}
	for _, r := range rows {
		m.rows[r.Ticker] = r
	}
	return m
}

func (m *memStore) ListTickers(ctx context.Context, activeOnly bool) ([]types.TickerRegistryRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.TickerRegistryRow
	for _, r := range m.rows {
		if !activeOnly || r.IsActive {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Ticker < out[j].Ticker
	})
	return out, nil
}

func (m *memStore) GetTicker(ctx context.Context, ticker string) (*types.TickerRegistryRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[ticker]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memStore) UpsertTicker(ctx context.Context, row types.TickerRegistryRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[row.Ticker] = row
	return nil
}

func (m *memStore) DeactivateTicker(ctx context.Context, ticker string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[ticker]
	if !ok {
		return false, nil
	}
	r.IsActive = false
	m.rows[ticker] = r
	return true, nil
}

func setupRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), store, token)
	return r
}

func do(t *testing.T, r http.Handler, method, target, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set(middleware.AdminTokenHeader, token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seed() *memStore {
	return newMemStore(
		types.TickerRegistryRow{Ticker: "RY", Source: types.TickerSourceTeam, IsActive: true, Priority: 5},
		types.TickerRegistryRow{Ticker: "AAPL", Source: types.TickerSourceBoth, IsActive: true, Priority: 3},
		types.TickerRegistryRow{Ticker: "NVDA", Source: types.TickerSourceWatchlist, IsActive: true, Priority: 1},
		types.TickerRegistryRow{Ticker: "OLD", Source: types.TickerSourceTeam, IsActive: false},
	)
}

func symbols(rows []types.TickerRegistryRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Ticker)
	}
	return out
}

func TestTeamSplitsSources(t *testing.T) {
	w := do(t, setupRouter(seed()), http.MethodGet, "/api/team-tickers", "", false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp TeamResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"RY", "AAPL"}, symbols(resp.Team))
	assert.Equal(t, []string{"AAPL", "NVDA"}, symbols(resp.Watchlist))
	assert.Equal(t, 2, resp.Count)
}

func TestMutationsRequireToken(t *testing.T) {
	r := setupRouter(seed())
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/api/team-tickers", `{"ticker":"TD"}`, false).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodDelete, "/api/team-tickers?ticker=RY", "", false).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/api/admin/tickers", "", false).Code)
}

func TestAddToTeam(t *testing.T) {
	store := seed()
	r := setupRouter(store)

	w := do(t, r, http.MethodPost, "/api/team-tickers", `{"ticker":"td.to","company_name":"TD Bank"}`, true)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, types.TickerSourceTeam, store.rows["TD.TO"].Source)
	assert.True(t, store.rows["TD.TO"].IsActive)

	w = do(t, r, http.MethodPost, "/api/team-tickers", `{"ticker":"NVDA"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.TickerSourceBoth, store.rows["NVDA"].Source)
	assert.Equal(t, 1, store.rows["NVDA"].Priority)

	w = do(t, r, http.MethodPost, "/api/team-tickers", `{"ticker":"OLD"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.rows["OLD"].IsActive)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/team-tickers", `{"ticker":"not a ticker"}`, true).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/team-tickers", `{}`, true).Code)
}

func TestRemoveFromTeam(t *testing.T) {
	store := seed()
	r := setupRouter(store)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, "/api/team-tickers?ticker=AAPL", "", true).Code)
	assert.Equal(t, types.TickerSourceWatchlist, store.rows["AAPL"].Source)
	assert.True(t, store.rows["AAPL"].IsActive)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, "/api/team-tickers?ticker=ry", "", true).Code)
	assert.False(t, store.rows["RY"].IsActive)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/api/team-tickers?ticker=NVDA", "", true).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/api/team-tickers?ticker=ZZZZ", "", true).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodDelete, "/api/team-tickers", "", true).Code)
}

func TestAdminRegistry(t *testing.T) {
	store := seed()
	r := setupRouter(store)

	w := do(t, r, http.MethodGet, "/api/admin/tickers", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Tickers []types.TickerRegistryRow `json:"tickers"`
		Count   int                       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 3, list.Count)

	w = do(t, r, http.MethodGet, "/api/admin/tickers?includeInactive=true", "", true)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 4, list.Count)

	w = do(t, r, http.MethodPost, "/api/admin/tickers", `{"ticker":"shop","source":"manual","priority":2}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.TickerSourceManual, store.rows["SHOP"].Source)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/admin/tickers", `{"ticker":"SHOP","source":"mystery"}`, true).Code)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, "/api/admin/tickers?ticker=SHOP", "", true).Code)
	assert.False(t, store.rows["SHOP"].IsActive)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/api/admin/tickers?ticker=NOPE", "", true).Code)
}

func TestNormalizeTicker(t *testing.T) {
	for _, ok := range []string{"AAPL", " brk-b ", "RY.TO", "BTC"} {
		_, err := NormalizeTicker(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "TOOLONGSYM", "A B", "AAPL;DROP"} {
		_, err := NormalizeTicker(bad)
		assert.ErrorIs(t, err, ErrInvalidTicker, bad)
	}
}
