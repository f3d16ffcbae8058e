package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-fractions/internal/api/middleware"
	"github.com/feral-file/ff-fractions/internal/logger"
	"github.com/feral-file/ff-fractions/internal/mocks"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

func newTestRouter(t *testing.T, cfg Config) *gin.Engine {
	ctrl := gomock.NewController(t)
	return New(cfg, mocks.NewMockExecutor(ctrl)).Router()
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, Config{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_MutationsRequireAuth(t *testing.T) {
	router := newTestRouter(t, Config{Auth: middleware.AuthConfig{APIKeys: []string{"k"}}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_CORS(t *testing.T) {
	router := newTestRouter(t, Config{AllowedOrigins: []string{"https://app.feralfile.com"}})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/sales", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	allowed := preflight("https://app.feralfile.com")
	assert.Equal(t, "https://app.feralfile.com", allowed.Header().Get("Access-Control-Allow-Origin"))

	denied := preflight("https://evil.example")
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	router := newTestRouter(t, Config{RateLimit: middleware.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}})

	send := func() int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
