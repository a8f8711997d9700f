package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescueradar/models"
	"rescueradar/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) })
	r.POST("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) })
	return r
}

func serve(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoggerMiddleware_AssignsRequestID(t *testing.T) {
	logger := logrus.New()
	r := newRouter(LoggerMiddleware(LoggerConfig{Logger: logger}))

	w := serve(r, http.MethodGet, "/ok", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	w = serve(r, http.MethodGet, "/ok", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestShouldSkipPath(t *testing.T) {
	skip := []string{"/health", "/metrics"}
	assert.True(t, shouldSkipPath("/health", skip))
	assert.True(t, shouldSkipPath("/metrics/extra", skip))
	assert.False(t, shouldSkipPath("/healthz", skip))
	assert.False(t, shouldSkipPath("/api/report", skip))
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	r := gin.New()
	r.Use(NewErrorHandler("production", logrus.New()).Handle())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := serve(r, http.MethodGet, "/boom", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Internal server error", body.Message)
	assert.Empty(t, body.Details)
}

func TestErrorHandler_RendersAttachedError(t *testing.T) {
	r := gin.New()
	r.Use(NewErrorHandler("production", logrus.New()).Handle())
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(utils.NewNotFoundError("Report")) })

	w := serve(r, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Report not found")
}

func TestCORS_Preflight(t *testing.T) {
	r := newRouter(CORS(DefaultCORSConfig([]string{"https://rescueradar.org"})))

	w := serve(r, http.MethodOptions, "/ok", map[string]string{
		"Origin":                        "https://rescueradar.org",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://rescueradar.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")

	w = serve(r, http.MethodGet, "/ok", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardOrigins(t *testing.T) {
	assert.True(t, isOriginAllowed([]string{"*"}, "https://any.example"))
	assert.True(t, isOriginAllowed([]string{"*.rescueradar.org"}, "https://map.rescueradar.org"))
	assert.False(t, isOriginAllowed([]string{"*.rescueradar.org"}, "https://rescueradar.org.evil"))

	r := newRouter(CORSMiddleware(nil))
	w := serve(r, http.MethodGet, "/ok", map[string]string{"Origin": "https://any.example"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter_PassesWithoutRedis(t *testing.T) {
	r := newRouter(APIRateLimit(nil, 1, 0))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ok", nil).Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := utils.NewJWTService("test-secret")
	auth := NewAuthMiddleware(jwtService)
	r := newRouter(auth.RequireAdmin()...)

	adminToken, err := jwtService.GenerateToken("op-1", "ops@rescueradar.org", utils.RoleAdmin)
	require.NoError(t, err)
	viewerToken, err := jwtService.GenerateToken("op-2", "viewer@rescueradar.org", "viewer")
	require.NoError(t, err)
	foreignToken, err := utils.NewJWTService("other-secret").GenerateToken("op-3", "x@y.z", utils.RoleAdmin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"malformed header", "Token " + adminToken, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreignToken, http.StatusUnauthorized},
		{"non-admin role", "Bearer " + viewerToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.header != "" {
				headers["Authorization"] = tc.header
			}
			assert.Equal(t, tc.status, serve(r, http.MethodGet, "/ok", headers).Code)
		})
	}
}
