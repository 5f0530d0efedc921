package emaillogs

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobapps/gob-api/internal/notify"
)

type listResponse struct {
	Success  bool              `json:"success"`
	Logs     []notify.LogEntry `json:"logs"`
	Count    int               `json:"count"`
	Total    int               `json:"total"`
	Capacity int               `json:"capacity"`
}

func setup(n int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	buf := notify.NewLogBuffer(3)
	for i := 0; i < n; i++ {
		buf.Append(notify.LogEntry{
			Timestamp: time.Date(2026, 10, 15, 12, i, 0, 0, time.UTC),
			Subject:   fmt.Sprintf("briefing %d", i),
			Status:    notify.StatusSent,
		})
	}
	r := gin.New()
	RegisterRoutes(r.Group("/api"), buf)
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestListNewestFirstAfterEviction(t *testing.T) {
	w := get(setup(5), "/api/email-logs")
	require.Equal(t, http.StatusOK, w.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, 3, resp.Capacity)
	require.Len(t, resp.Logs, 3)
	assert.Equal(t, "briefing 4", resp.Logs[0].Subject)
	assert.Equal(t, "briefing 2", resp.Logs[2].Subject)
}

func TestListLimit(t *testing.T) {
	w := get(setup(3), "/api/email-logs?limit=1")
	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Logs, 1)
	assert.Equal(t, "briefing 2", resp.Logs[0].Subject)
	assert.Equal(t, 3, resp.Total)

	assert.Equal(t, http.StatusBadRequest, get(setup(1), "/api/email-logs?limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(setup(1), "/api/email-logs?limit=abc").Code)
}

func TestListEmpty(t *testing.T) {
	w := get(setup(0), "/api/email-logs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"logs":[]`)
}
