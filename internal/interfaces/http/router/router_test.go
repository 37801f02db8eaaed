package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-api/internal/application/story"
	"storybook-api/internal/config"
	"storybook-api/internal/infrastructure/persistence/redis"
	"storybook-api/internal/interfaces/http/handler"
	"storybook-api/internal/interfaces/http/middleware"
	apperrors "storybook-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGateway struct {
	got   story.StoryRequest
	story string
	err   error
}

func (s *stubGateway) Make(_ context.Context, req story.StoryRequest) (string, error) {
	s.got = req
	return s.story, s.err
}

func (s *stubGateway) Provider() string { return "gemini" }
func (s *stubGateway) Ready() error     { return nil }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "storybook-api", Env: "test"},
		Observability: config.ObservabilityConfig{
			Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		},
		Proxy: config.ProxyConfig{Timeout: 2 * time.Second},
	}
}

func newTestEngine(t *testing.T, cfg *config.Config, gw *stubGateway, limiter *redis.RateLimiter) *gin.Engine {
	t.Helper()
	proxy, err := handler.NewProxyHandler(cfg.Proxy)
	require.NoError(t, err)

	var l middleware.RateLimiter
	if limiter != nil {
		l = limiter
	}

	return New(cfg, Handlers{
		Story:  handler.NewStoryHandler(gw),
		Proxy:  proxy,
		Health: handler.NewHealthHandler("test", gw, nil),
	}, l).Engine()
}

func do(engine http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestStoryMakeSuccess(t *testing.T) {
	gw := &stubGateway{story: "A\n\nB"}
	e := newTestEngine(t, testConfig(), gw, nil)

	w := do(e, http.MethodPost, "/api/story/make", `{"title":"숲","length":"3"}`, map[string]string{"Content-Type": "application/json"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A\n\nB", decode(t, w)["story"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, "숲", gw.got.Title)
	assert.Equal(t, 3, gw.got.Length)
	assert.Equal(t, "6-8세", gw.got.Age)
	assert.True(t, gw.got.Moral)
}

func TestStoryMakeEmptyBodyUsesDefaults(t *testing.T) {
	gw := &stubGateway{story: "ok"}
	e := newTestEngine(t, testConfig(), gw, nil)

	w := do(e, http.MethodPost, "/api/story/make", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, gw.got.Length)
	assert.Equal(t, "따뜻한", gw.got.Style)
}

func TestStoryMakeMalformedJSON(t *testing.T) {
	e := newTestEngine(t, testConfig(), &stubGateway{}, nil)

	w := do(e, http.MethodPost, "/api/story/make", `{"title":`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decode(t, w)["error"])
}

func TestStoryMakeFailureStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{apperrors.New(apperrors.CodeTimeout, "no response within 15s"), http.StatusGatewayTimeout, "timeout"},
		{apperrors.New(apperrors.ProviderFailed("openai"), "openai_failed 401 bad key"), http.StatusBadGateway, "openai_failed"},
		{apperrors.New(apperrors.CodeEmptyStory, "empty"), http.StatusBadGateway, "empty_story"},
		{apperrors.New(apperrors.CodeUnknownProvider, "unknown provider"), http.StatusBadGateway, "unknown_provider"},
	}
	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			e := newTestEngine(t, testConfig(), &stubGateway{err: tc.err}, nil)
			w := do(e, http.MethodPost, "/api/story/make", "{}", nil)

			assert.Equal(t, tc.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, tc.kind, body["error"])
			assert.NotEmpty(t, body["detail"])
		})
	}
}

func TestStoryMakeDetailIsTruncated(t *testing.T) {
	long := strings.Repeat("가", 1000)
	e := newTestEngine(t, testConfig(), &stubGateway{err: apperrors.New(apperrors.CodeTransportFailed, long)}, nil)

	w := do(e, http.MethodPost, "/api/story/make", "{}", nil)
	detail := decode(t, w)["detail"].(string)
	assert.Equal(t, apperrors.DetailLimit, len([]rune(detail)))
}

func TestProxyForwardsRequest(t *testing.T) {
	var got *http.Request
	var gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream-Secret", "nope")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	cfg := testConfig()
	cfg.Proxy.UpstreamBase = upstream.URL + "/base"
	e := newTestEngine(t, cfg, &stubGateway{}, nil)

	w := do(e, http.MethodPost, "/api/books?x=1&y=%20", `{"a":1}`, map[string]string{
		"Authorization": "Bearer t",
		"Cookie":        "session=1",
		"X-Custom":      "drop",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("X-Upstream-Secret"))

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/base/books", got.URL.Path)
	assert.Equal(t, "x=1&y=%20", got.URL.RawQuery)
	assert.Equal(t, "Bearer t", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Empty(t, got.Header.Get("Cookie"))
	assert.Empty(t, got.Header.Get("X-Custom"))
	assert.Equal(t, `{"a":1}`, gotBody)
}

func TestProxyGetWrongMethodOnStoryRoute(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("hi"))
	}))
	defer upstream.Close()

	cfg := testConfig()
	cfg.Proxy.UpstreamBase = upstream.URL
	e := newTestEngine(t, cfg, &stubGateway{}, nil)

	w := do(e, http.MethodGet, "/api/story/make", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hi", w.Body.String())
	assert.Equal(t, "/story/make", gotPath)
}

func TestProxyUpstreamUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	base := upstream.URL
	upstream.Close()

	cfg := testConfig()
	cfg.Proxy.UpstreamBase = base
	e := newTestEngine(t, cfg, &stubGateway{}, nil)

	w := do(e, http.MethodGet, "/api/books", "", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)
	body := decode(t, w)
	assert.Equal(t, "proxy_failed", body["error"])
	assert.Contains(t, body["detail"], "upstream unreachable")
	assert.NotContains(t, w.Body.String(), strings.TrimPrefix(base, "http://"))
}

func TestProxyNotConfigured(t *testing.T) {
	e := newTestEngine(t, testConfig(), &stubGateway{}, nil)

	w := do(e, http.MethodGet, "/api/books", "", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "proxy_failed", decode(t, w)["error"])
}

func TestUnknownNonAPIPath(t *testing.T) {
	e := newTestEngine(t, testConfig(), &stubGateway{}, nil)

	w := do(e, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSystemEndpoints(t *testing.T) {
	e := newTestEngine(t, testConfig(), &stubGateway{}, nil)

	for _, path := range []string{"/health", "/live"} {
		w := do(e, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := do(e, http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	checks := decode(t, w)["checks"].(map[string]any)
	provider := checks["provider"].(map[string]any)
	assert.Equal(t, "gemini", provider["name"])
	assert.Equal(t, "disabled", checks["redis"].(map[string]any)["status"])

	w = do(e, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storybook_")
}

func TestRateLimitRejectsBurst(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 2}
	e := newTestEngine(t, cfg, &stubGateway{story: "ok"}, redis.NewRateLimiter(client))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(e, http.MethodPost, "/api/story/make", "{}", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "", nil).Code)
}
