package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCORSRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://hr.example.com"}))
	r.POST("/leaves/apply", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func TestCORS_Preflight(t *testing.T) {
	r := newCORSRouter()

	req := httptest.NewRequest(http.MethodOptions, "/leaves/apply", nil)
	req.Header.Set("Origin", "https://hr.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", HeaderIdempotencyKey)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://hr.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_UnknownOrigin(t *testing.T) {
	r := newCORSRouter()

	req := httptest.NewRequest(http.MethodPost, "/leaves/apply", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ExposesRequestID(t *testing.T) {
	r := newCORSRouter()

	req := httptest.NewRequest(http.MethodPost, "/leaves/apply", nil)
	req.Header.Set("Origin", "https://hr.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	exposed := strings.ToLower(w.Header().Get("Access-Control-Expose-Headers"))
	assert.Contains(t, exposed, strings.ToLower(HeaderRequestID))
}
