package auth

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/apperror"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	HeaderClientType = "X-Client-Type"
	clientTypeWeb    = "WEB"
)

type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Handler struct {
	service Service
	cookies CookieConfig
	logger  *zap.Logger
}

func NewHandler(s Service, cookies CookieConfig, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: s, cookies: cookies, logger: l}
}

func isWebClient(c *gin.Context) bool {
	return strings.EqualFold(strings.TrimSpace(c.GetHeader(HeaderClientType)), clientTypeWeb)
}

func (h *Handler) setTokenCookies(c *gin.Context, pair TokenPair) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "access_token",
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(h.cookies.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "refresh_token",
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.cookies.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearTokenCookies(c *gin.Context) {
	for _, name := range []string{"access_token", "refresh_token"} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cookies.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h *Handler) writeError(c *gin.Context, op string, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("http "+op+" failed", zap.Int("status", httpErr.Status), zap.String("code", httpErr.Code))
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.MapValidationError(err)
		response.Error(c, http.StatusBadRequest, apperror.CodeValidation, mapped.Message, err.Error())
		return
	}

	pair, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, "login", err)
		return
	}

	if isWebClient(c) {
		h.setTokenCookies(c, pair)
	}

	response.Success(c, http.StatusOK, LoginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil)
}

func (h *Handler) RefreshToken(c *gin.Context) {
	var refreshToken string
	if isWebClient(c) {
		cookie, err := c.Cookie("refresh_token")
		if err != nil || cookie == "" {
			response.Error(c, http.StatusUnauthorized, "NO_REFRESH_TOKEN", "Missing refresh token", nil)
			return
		}
		refreshToken = cookie
	} else {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, apperror.CodeValidation, "Refresh token is required", nil)
			return
		}
		refreshToken = req.RefreshToken
	}

	pair, user, err := h.service.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		h.writeError(c, "refresh token", err)
		return
	}

	if isWebClient(c) {
		h.setTokenCookies(c, pair)
	}

	response.Success(c, http.StatusOK, LoginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil)
}

func (h *Handler) Me(c *gin.Context) {
	userID, err := strconv.ParseInt(c.GetString("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	user, err := h.service.GetMe(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, "me", err)
		return
	}

	response.Success(c, http.StatusOK, user, nil)
}

func (h *Handler) Logout(c *gin.Context) {
	h.clearTokenCookies(c)
	response.Success(c, http.StatusOK, "Logout success.", nil)
}
