package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/streamlog/internal/cache"
	"github.com/streamlog/internal/config"
	"github.com/streamlog/internal/metrics"
	"github.com/streamlog/internal/service"
	"github.com/streamlog/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 1, 20, 0, 0, 0, time.Local)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type testEnv struct {
	api     *API
	streams *service.StreamService
	router  *gin.Engine
}

func newTestEnv(t *testing.T, backend storage.Backend) *testEnv {
	t.Helper()
	if backend == nil {
		backend = storage.NewMemory()
	}
	logger := zerolog.Nop()
	streams := service.NewStreamService(backend, logger, service.WithClock(func() time.Time { return testNow }))
	stats := service.NewStatsService(streams, cache.Nop(), metrics.Nop(), logger)
	api := NewAPI(streams, stats, config.AppConfig{WeekStartName: "sunday"}, logger)

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.GET("/api/platforms", api.ListPlatforms)
	r.GET("/api/streams", api.ListStreams)
	r.POST("/api/streams", api.CreateStream)
	r.GET("/api/streams/:id", api.GetStream)
	r.PUT("/api/streams/:id", api.UpdateStream)
	r.DELETE("/api/streams/:id", api.DeleteStream)
	r.GET("/api/days/:date", api.GetDay)
	r.GET("/api/stats", api.GetStats)
	r.GET("/api/calendar", api.GetCalendar)
	r.POST("/api/calendar/prev", api.PrevMonth)
	r.POST("/api/calendar/next", api.NextMonth)
	r.POST("/api/calendar/today", api.TodayMonth)

	return &testEnv{api: api, streams: streams, router: r}
}

func (e *testEnv) do(t *testing.T, method, target string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func validForm() map[string]string {
	return map[string]string{
		"date":             "2024-03-01",
		"platform":         "Kick",
		"viewers":          "80",
		"duration_hours":   "1",
		"duration_minutes": "30",
		"note":             "**first** kick stream",
	}
}

func TestCreateStreamThenList(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/api/streams", validForm())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	created := decodeBody(t, rr)["stream"].(map[string]interface{})
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "Kick", created["platform"])
	assert.Equal(t, "#53FC18", created["color"])
	assert.InDelta(t, 1.5, created["duration"], 1e-9)
	assert.EqualValues(t, 1, created["duration_hours"])
	assert.EqualValues(t, 30, created["duration_minutes"])
	assert.Contains(t, created["note_html"], "<strong>first</strong>")

	rr = env.do(t, http.MethodGet, "/api/streams", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody(t, rr)["streams"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, created["id"], list[0].(map[string]interface{})["id"])
}

func TestCreateStreamFromPostForm(t *testing.T) {
	env := newTestEnv(t, nil)

	values := url.Values{}
	for k, v := range validForm() {
		values.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/streams", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestCreateStreamValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name  string
		edit  func(form map[string]string)
		field string
	}{
		{name: "zero duration", edit: func(f map[string]string) { f["duration_hours"] = ""; f["duration_minutes"] = "0" }, field: "duration"},
		{name: "bad viewers", edit: func(f map[string]string) { f["viewers"] = "lots" }, field: "viewers"},
		{name: "zero viewers", edit: func(f map[string]string) { f["viewers"] = "0" }, field: "viewers"},
		{name: "unknown platform", edit: func(f map[string]string) { f["platform"] = "Myspace" }, field: "platform"},
		{name: "bad date", edit: func(f map[string]string) { f["date"] = "2024-02-30" }, field: "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.edit(form)
			rr := env.do(t, http.MethodPost, "/api/streams", form)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			body := decodeBody(t, rr)
			assert.Equal(t, tt.field, body["field"])
			assert.NotEmpty(t, body["error"])
		})
	}

	rr := env.do(t, http.MethodGet, "/api/streams", nil)
	assert.Empty(t, decodeBody(t, rr)["streams"])
}

func TestCreateStreamRejectsMalformedJSON(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/streams", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateAndDeleteStream(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/api/streams", validForm())
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decodeBody(t, rr)["stream"].(map[string]interface{})["id"].(string)

	form := validForm()
	form["viewers"] = "150"
	form["platform"] = "youtube"
	rr = env.do(t, http.MethodPut, "/api/streams/"+id, form)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decodeBody(t, rr)["stream"].(map[string]interface{})
	assert.Equal(t, id, updated["id"])
	assert.Equal(t, "YouTube", updated["platform"])
	assert.EqualValues(t, 150, updated["viewers"])

	rr = env.do(t, http.MethodGet, "/api/streams/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/streams/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(t, http.MethodDelete, "/api/streams/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/streams/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateUnknownStreamReturnsNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPut, "/api/streams/does-not-exist", validForm())
	assert.Equal(t, http.StatusNotFound, rr.Code)

	list, err := env.streams.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListStreamsByDateAndDayView(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.streams.EnsureInitialized(context.Background()))

	rr := env.do(t, http.MethodGet, "/api/streams?date=2024-02-28", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody(t, rr)["streams"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "YouTube", list[0].(map[string]interface{})["platform"])

	rr = env.do(t, http.MethodGet, "/api/streams?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/days/2024-03-01", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	day := decodeBody(t, rr)
	assert.Equal(t, true, day["is_today"])
	streams := day["streams"].([]interface{})
	require.Len(t, streams, 1)
	id := streams[0].(map[string]interface{})["id"].(string)
	form := day["forms"].(map[string]interface{})[id].(map[string]interface{})
	assert.Equal(t, "3", form["duration_hours"])
	assert.Equal(t, "30", form["duration_minutes"])
	assert.Equal(t, "45", form["viewers"])

	rr = env.do(t, http.MethodGet, "/api/days/not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetStats(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.streams.EnsureInitialized(context.Background()))

	rr := env.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)

	assert.EqualValues(t, 2, body["total_streams"])
	assert.InDelta(t, 5.5, body["total_hours"], 1e-9)
	assert.EqualValues(t, 2, body["total_unique_days"])

	dist := body["platform_distribution"].(map[string]interface{})
	assert.Len(t, dist, 5)
	assert.EqualValues(t, 1, dist["Twitch"])
	assert.EqualValues(t, 0, dist["Kick"])

	daily := body["daily_viewers"].([]interface{})
	require.Len(t, daily, 2)
	assert.Equal(t, "2024-02-28", daily[0].(map[string]interface{})["date"])
	assert.Equal(t, "2024-03-01", daily[1].(map[string]interface{})["date"])
}

func TestListPlatforms(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodGet, "/api/platforms", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	platforms := decodeBody(t, rr)["platforms"].([]interface{})
	require.Len(t, platforms, 5)
	assert.Equal(t, "Twitch", platforms[0].(map[string]interface{})["name"])
	assert.Equal(t, "#9146FF", platforms[0].(map[string]interface{})["color"])
}

type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("backend offline")
}

func (brokenBackend) Set(context.Context, string, []byte) error {
	return errors.New("backend offline")
}

func TestStorageFailureReturnsGenericError(t *testing.T) {
	env := newTestEnv(t, brokenBackend{})

	rr := env.do(t, http.MethodGet, "/api/streams", nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "获取直播记录失败", body["error"])
	assert.NotContains(t, rr.Body.String(), "backend offline")
}

func TestGetStatsRanksPlatformsByCount(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.streams.EnsureInitialized(context.Background()))
	for i := 0; i < 2; i++ {
		rr := env.do(t, http.MethodPost, "/api/streams", validForm())
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := env.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)

	platforms := body["platforms"].([]interface{})
	require.Len(t, platforms, 3)
	names := make([]interface{}, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, p.(map[string]interface{})["name"])
	}
	assert.Equal(t, []interface{}{"Kick", "Twitch", "YouTube"}, names)
	assert.EqualValues(t, 2, platforms[0].(map[string]interface{})["count"])

	assert.Len(t, body["platform_distribution"], 5)
}
