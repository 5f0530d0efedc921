package dailycache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobapps/gob-api/internal/types"
)

var now = time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)

type fakeStore struct {
	entries map[string]types.DailyCacheEntry
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]types.DailyCacheEntry{}}
}

func (f *fakeStore) GetDailyCache(ctx context.Context, cacheType, date string) (*types.DailyCacheEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.entries[date+"/"+cacheType]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (f *fakeStore) UpsertDailyCache(ctx context.Context, entry types.DailyCacheEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries[entry.Date+"/"+entry.CacheType] = entry
	return nil
}

func setupRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := NewService(store)
	service.now = func() time.Time { return now }
	ctrl := NewController(service)
	r := gin.New()
	r.GET("/api/supabase-daily-cache", ctrl.Get)
	r.POST("/api/supabase-daily-cache", ctrl.Save)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type lookup struct {
	Success  bool            `json:"success"`
	Cached   bool            `json:"cached"`
	Data     json.RawMessage `json:"data"`
	AgeHours *float64        `json:"age_hours"`
	Expired  *bool           `json:"expired"`
}

func TestLookupMiss(t *testing.T) {
	w := do(setupRouter(newFakeStore()), http.MethodGet, "/api/supabase-daily-cache?type=news", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp lookup
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Cached)
	assert.Contains(t, w.Body.String(), `"data":null`)
	assert.Nil(t, resp.Expired)
}

func TestLookupFreshAndExpired(t *testing.T) {
	store := newFakeStore()
	store.entries["2026-10-15/news"] = types.DailyCacheEntry{
		Date: "2026-10-15", CacheType: "news", Data: json.RawMessage(`{"items":[1]}`), UpdatedAt: now.Add(-90 * time.Minute),
	}
	store.entries["2026-10-14/news"] = types.DailyCacheEntry{
		Date: "2026-10-14", CacheType: "news", Data: json.RawMessage(`{"items":[]}`), UpdatedAt: now.Add(-2 * time.Hour),
	}
	r := setupRouter(store)

	var fresh lookup
	w := do(r, http.MethodGet, "/api/supabase-daily-cache?type=news", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fresh))
	assert.True(t, fresh.Cached)
	assert.JSONEq(t, `{"items":[1]}`, string(fresh.Data))
	assert.InDelta(t, 1.5, *fresh.AgeHours, 1e-9)
	assert.False(t, *fresh.Expired)

	var stale lookup
	w = do(r, http.MethodGet, "/api/supabase-daily-cache?type=news&date=2026-10-14", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stale))
	assert.True(t, stale.Cached)
	assert.InDelta(t, 2.0, *stale.AgeHours, 1e-9)
	assert.True(t, *stale.Expired)
}

func TestLookupValidation(t *testing.T) {
	r := setupRouter(newFakeStore())
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/supabase-daily-cache", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/supabase-daily-cache?type=news&date=15/10/2026", "").Code)
}

func TestSaveThenLookup(t *testing.T) {
	store := newFakeStore()
	r := setupRouter(store)

	w := do(r, http.MethodPost, "/api/supabase-daily-cache", `{"type":"calendar","data":{"events":3}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"date":"2026-10-15"`)

	saved := store.entries["2026-10-15/calendar"]
	assert.Equal(t, now, saved.UpdatedAt)

	var resp lookup
	w = do(r, http.MethodGet, "/api/supabase-daily-cache?type=calendar", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, `{"events":3}`, string(resp.Data))
	assert.Equal(t, 0.0, *resp.AgeHours)
}

func TestSaveValidationAndStoreError(t *testing.T) {
	r := setupRouter(newFakeStore())
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/supabase-daily-cache", `{"data":{}}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/supabase-daily-cache", `{"type":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/supabase-daily-cache", `{"type":"x","date":"2026-13-01","data":1}`).Code)

	store := newFakeStore()
	store.err = errors.New("permission denied")
	w := do(setupRouter(store), http.MethodPost, "/api/supabase-daily-cache", `{"type":"x","data":1}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "permission denied")
}
