package wire

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-api/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App:   config.AppConfig{Name: "storybook-api", Version: "v-test"},
		Story: config.StoryConfig{Provider: "gemini", TimeoutMs: 1000},
		LLM: config.LLMConfig{Providers: map[string]config.ProviderConfig{
			"gemini": {APIKey: "k"},
		}},
	}
}

func TestInitializeAppWithoutRedis(t *testing.T) {
	r, cleanup, err := InitializeApp(context.Background(), testConfig())
	require.NoError(t, err)
	defer cleanup()

	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"disabled"`)
}

func TestInitializeAppRejectsInvalidProxyUpstream(t *testing.T) {
	cfg := testConfig()
	cfg.Proxy.UpstreamBase = "not a url"

	_, _, err := InitializeApp(context.Background(), cfg)
	assert.Error(t, err)
}

func TestProvideRedisClientAndLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	p, _ := strconv.Atoi(port)

	cfg := testConfig()
	cfg.Cache.Redis = config.RedisConfig{Enabled: true, Host: host, Port: p}

	client, cleanup, err := ProvideRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, client)
	assert.NotNil(t, ProvideRateLimiter(client))
}

func TestProvideRedisClientUnreachableIsOptional(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Redis = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	client, cleanup, err := ProvideRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, client)
	assert.Nil(t, ProvideRateLimiter(client))
}
