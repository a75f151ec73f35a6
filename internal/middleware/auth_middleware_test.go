package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"user_id":     42,
		"employee_id": 7,
		"role":        "manager",
		"typ":         "access",
		"exp":         time.Now().Add(time.Minute).Unix(),
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Ok    bool `json:"ok"`
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Ok)
	return body.Error.Code
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetString(ContextUserID),
			"employee_id": c.GetInt64(ContextEmployeeID),
			"role":        c.GetString(ContextRole),
			"ctx_user_id": contextutil.GetUserID(c.Request.Context()),
		})
	})
	return r
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	router := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(), testSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"42","employee_id":7,"role":"MANAGER","ctx_user_id":"42"}`, w.Body.String())
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	router := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, validClaims(), testSecret)})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	refresh := validClaims()
	refresh["typ"] = "refresh"

	noEmployee := validClaims()
	delete(noEmployee, "employee_id")

	stringIDs := validClaims()
	stringIDs["user_id"] = "abc"

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing token", "", "UNAUTHORIZED"},
		{"wrong secret", "Bearer " + signToken(t, validClaims(), "other"), "INVALID_TOKEN"},
		{"expired", "Bearer " + signToken(t, expired, testSecret), "TOKEN_EXPIRED"},
		{"refresh token", "Bearer " + signToken(t, refresh, testSecret), "INVALID_TOKEN"},
		{"missing employee", "Bearer " + signToken(t, noEmployee, testSecret), "INVALID_TOKEN"},
		{"non numeric user", "Bearer " + signToken(t, stringIDs, testSecret), "INVALID_TOKEN"},
	}

	router := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}
