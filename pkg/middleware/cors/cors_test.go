package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(opts Options, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(opts))
	r.GET("/api/all", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/api/all", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestWildcardSubdomain(t *testing.T) {
	opts := Options{AllowedOrigins: []string{"http://localhost:5000", "https://*.github.io"}}

	rec := serve(opts, http.MethodGet, "https://someone.github.io")
	assert.Equal(t, "https://someone.github.io", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(opts, http.MethodGet, "http://someone.github.io")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(opts, http.MethodGet, "https://github.io")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestExactOrigin(t *testing.T) {
	opts := Options{AllowedOrigins: []string{"http://localhost:5000/"}}

	rec := serve(opts, http.MethodGet, "http://localhost:5000")
	assert.Equal(t, "http://localhost:5000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(opts, http.MethodGet, "http://evil.test")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	rec := serve(Options{}, http.MethodOptions, "http://anything.test")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "http://anything.test", rec.Header().Get("Access-Control-Allow-Origin"))
}
