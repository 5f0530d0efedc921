package appconfig

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobapps/gob-api/internal/types"
)

// memStore mirrors the SQL semantics: one row per key, upsert reactivates.
type memStore struct {
	mu   sync.Mutex
	rows map[string]types.AppConfigEntry
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]types.AppConfigEntry{}}
}

func (m *memStore) GetConfig(ctx context.Context, key string, activeOnly bool) (*types.AppConfigEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[key]
	if !ok || (activeOnly && !row.IsActive) {
		return nil, nil
	}
	return &row, nil
}

func (m *memStore) ListConfig(ctx context.Context, category string) ([]types.AppConfigEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.AppConfigEntry
	for _, row := range m.rows {
		if row.IsActive && (category == "" || row.ConfigCategory == category) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConfigKey < out[j].ConfigKey })
	return out, nil
}

func (m *memStore) UpsertConfig(ctx context.Context, entry types.AppConfigEntry) (*types.AppConfigEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.IsActive = true
	m.rows[entry.ConfigKey] = entry
	return &entry, nil
}

func (m *memStore) DeactivateConfig(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[key]
	if !ok {
		return false, nil
	}
	row.IsActive = false
	m.rows[key] = row
	return true, nil
}

func setupRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), store)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type single struct {
	Success bool                 `json:"success"`
	Data    types.AppConfigEntry `json:"data"`
}

func TestUpsertIsIdempotent(t *testing.T) {
	store := newMemStore()
	r := setupRouter(store)

	body := `{"config_key":"max_tickers","config_category":"limits","config_value":50}`
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/app-config", body).Code)
	require.Equal(t, http.StatusOK, do(r, http.MethodPut, "/api/app-config", body).Code)
	assert.Len(t, store.rows, 1)

	var resp single
	w := do(r, http.MethodGet, "/api/app-config?key=max_tickers", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "50", string(resp.Data.ConfigValue))
	assert.Equal(t, "limits", resp.Data.ConfigCategory)
}

func TestStringValueIsParsedOnce(t *testing.T) {
	store := newMemStore()
	r := setupRouter(store)

	do(r, http.MethodPost, "/api/app-config", `{"config_key":"flags","config_value":"{\"beta\":true}"}`)
	assert.JSONEq(t, `{"beta":true}`, string(store.rows["flags"].ConfigValue))
	assert.Equal(t, DefaultCategory, store.rows["flags"].ConfigCategory)

	do(r, http.MethodPost, "/api/app-config", `{"config_key":"greeting","config_value":"bonjour"}`)
	assert.Equal(t, `"bonjour"`, string(store.rows["greeting"].ConfigValue))
}

func TestDeleteIsSoft(t *testing.T) {
	store := newMemStore()
	r := setupRouter(store)
	do(r, http.MethodPost, "/api/app-config", `{"config_key":"theme","config_value":"dark"}`)

	require.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/api/app-config?key=theme", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/app-config?key=theme", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/app-config?key=theme&includeInactive=true", "").Code)
	assert.Len(t, store.rows, 1)

	// upsert brings it back
	do(r, http.MethodPost, "/api/app-config", `{"config_key":"theme","config_value":"light"}`)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/app-config?key=theme", "").Code)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/api/app-config?key=nope", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodDelete, "/api/app-config", "").Code)
}

func TestListByCategory(t *testing.T) {
	r := setupRouter(newMemStore())
	do(r, http.MethodPost, "/api/app-config", `{"config_key":"a","config_category":"ui","config_value":1}`)
	do(r, http.MethodPost, "/api/app-config", `{"config_key":"b","config_category":"ui","config_value":2}`)
	do(r, http.MethodPost, "/api/app-config", `{"config_key":"c","config_category":"limits","config_value":3}`)
	do(r, http.MethodDelete, "/api/app-config?key=b", "")

	var resp struct {
		Data  []types.AppConfigEntry `json:"data"`
		Count int                    `json:"count"`
	}
	w := do(r, http.MethodGet, "/api/app-config?all=true&category=ui", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "a", resp.Data[0].ConfigKey)

	w = do(r, http.MethodGet, "/api/app-config?all=true&category=none", "")
	assert.Contains(t, w.Body.String(), `"data":[]`)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/app-config", "").Code)
}

func TestUpsertValidation(t *testing.T) {
	r := setupRouter(newMemStore())
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/app-config", `{"config_value":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/app-config", `{"config_key":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/app-config", `not json`).Code)
}

func TestGetPutJSON(t *testing.T) {
	service := NewService(newMemStore())
	service.now = func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	var dst map[string]int
	found, err := service.GetJSON(ctx, "weights", &dst)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, service.PutJSON(ctx, "weights", "scoring", "", map[string]int{"pe": 2}))
	found, err = service.GetJSON(ctx, "weights", &dst)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]int{"pe": 2}, dst)
}
