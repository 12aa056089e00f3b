package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notionapi "github.com/aristath/roadmap/internal/clients/notion"
	"github.com/aristath/roadmap/internal/config"
	"github.com/aristath/roadmap/internal/di"
	"github.com/aristath/roadmap/internal/modules/roadmap"
	"github.com/aristath/roadmap/internal/scheduler"
	testutil "github.com/aristath/roadmap/internal/testing"
)

func newWiredServer(t *testing.T) (*Server, *testutil.NotionServer) {
	notion := testutil.NewNotionServer(t, []notionapi.Page{
		testutil.NotionPage(testutil.PageFixture{
			ID:          "aaaa-bbbb",
			Title:       "Faster charts",
			Description: "Speedups",
			Emoji:       "📈",
			Stage:       "👷 In development / drafting",
		}),
	})

	// A table holding just the current quarter keeps the test independent of the date.
	current := roadmap.FiscalCalendar{}.QuarterFor(time.Now()).Label()
	cfg := &config.Config{
		DataDir:        t.TempDir(),
		NotionToken:    "secret_test",
		NotionDatabase: "db-1",
		NotionBaseURL:  notion.URL,
		NotionSpace:    "acme",
		Title:          "Acme roadmap",
		Port:           0,
		Roadmap: &config.RoadmapConfig{
			CacheTTL:     time.Hour,
			OnlyPublic:   true,
			AllowPrivate: true,
			PeriodLabels: []string{current, roadmap.FuturePeriod},
		},
	}

	container, jobs, err := di.Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	s := New(Config{Log: zerolog.Nop(), Port: 0, DevMode: true, Container: container, Jobs: jobs})
	s.systemHandlers.run = s.systemHandlers.runJob
	return s, notion
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	s := New(Config{Log: zerolog.Nop()})

	w := serve(s, "GET", "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "roadmap", response["service"])
}

func TestSystemStatus_WithoutContainer(t *testing.T) {
	s := New(Config{Log: zerolog.Nop()})

	w := serve(s, "GET", "/api/system/status")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data SystemStatusResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "degraded", response.Data.Status)
	assert.NotEmpty(t, response.Data.Warnings)
}

func TestTrigger_WithoutJobs(t *testing.T) {
	s := New(Config{Log: zerolog.Nop()})

	w := serve(s, "POST", "/api/system/refresh")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDashboardAndAPI(t *testing.T) {
	s, calls := newWiredServer(t)

	w := serve(s, "GET", "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Acme roadmap")
	assert.Contains(t, w.Body.String(), "Faster charts")
	assert.Contains(t, w.Body.String(), "👷 Development")
	assert.NotContains(t, w.Body.String(), "notion.so")

	w = serve(s, "GET", "/api/roadmap?view=private")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://www.notion.so/acme/aaaabbbb")

	// Both requests share the public cache key.
	assert.Equal(t, 1, calls.Calls())
}

func TestSystemStatus(t *testing.T) {
	s, _ := newWiredServer(t)

	serve(s, "GET", "/api/roadmap")

	w := serve(s, "GET", "/api/system/status")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data SystemStatusResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Data.Status)
	assert.Equal(t, 2, response.Data.PeriodCount)
	require.Len(t, response.Data.Cache, 1)
	assert.Equal(t, int64(1), response.Data.Cache[0].Fresh)
	assert.Equal(t, 3, response.Data.ScheduledJobs)
}

func TestClearCache(t *testing.T) {
	s, calls := newWiredServer(t)

	serve(s, "GET", "/api/roadmap")
	assert.Equal(t, 1, calls.Calls())

	w := serve(s, "DELETE", "/api/system/cache")
	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["cleared"])

	// Next request refetches
	serve(s, "GET", "/api/roadmap")
	assert.Equal(t, 2, calls.Calls())
}

func TestClearCache_WithoutContainer(t *testing.T) {
	s := New(Config{Log: zerolog.Nop()})

	w := serve(s, "DELETE", "/api/system/cache")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth_ChecksCacheDatabase(t *testing.T) {
	s, _ := newWiredServer(t)

	w := serve(s, "GET", "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cache":"ok"`)

	require.NoError(t, s.container.CacheDB.Close())

	w = serve(s, "GET", "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestTriggerRefreshAndCleanup(t *testing.T) {
	s, calls := newWiredServer(t)

	w := serve(s, "POST", "/api/system/refresh")
	assert.Equal(t, http.StatusAccepted, w.Code)
	// Public and unfiltered variants
	assert.Equal(t, 2, calls.Calls())

	w = serve(s, "POST", "/api/system/cleanup")
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = serve(s, "GET", "/api/system/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

type blockingJob struct{}

func (blockingJob) Run() error   { return nil }
func (blockingJob) Name() string { return "blocking" }

func TestTrigger_RejectsConcurrentRun(t *testing.T) {
	h := NewSystemHandlers(zerolog.Nop(), nil, &di.JobInstances{RoadmapRefresh: blockingJob{}})
	// Leave the job marked as running
	h.run = func(scheduler.Job) {}

	w := httptest.NewRecorder()
	h.HandleTriggerRefresh(w, httptest.NewRequest("POST", "/api/system/refresh", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = httptest.NewRecorder()
	h.HandleTriggerRefresh(w, httptest.NewRequest("POST", "/api/system/refresh", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCORS(t *testing.T) {
	s := New(Config{Log: zerolog.Nop()})

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
