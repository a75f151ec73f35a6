package middleware

import (
	"errors"
	"strconv"
	"strings"

	autherrors "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/auth/errors"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/auth/token"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/apperror"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/contextutil"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserID     = "user_id"
	ContextEmployeeID = "employee_id"
	ContextRole       = "role"
)

// AuthMiddleware verifies the HS256 access token from the Authorization header
// or the access_token cookie and stores the caller identity in the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			abortWith(c, autherrors.ErrTokenNotFound)
			return
		}

		claims, err := token.Parse(tokenString, secret)
		if err != nil {
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) {
				appErr = autherrors.ErrInvalidToken
			}
			abortWith(c, appErr)
			return
		}
		if typ, _ := claims["typ"].(string); typ == token.TypeRefresh {
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}

		userID, ok := token.ClaimInt64(claims, "user_id")
		if !ok {
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}
		employeeID, ok := token.ClaimInt64(claims, "employee_id")
		if !ok {
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}
		role, _ := claims["role"].(string)

		c.Set(ContextUserID, strconv.FormatInt(userID, 10))
		c.Set(ContextEmployeeID, employeeID)
		c.Set(ContextRole, strings.ToUpper(role))

		ctx := contextutil.WithUserID(c.Request.Context(), strconv.FormatInt(userID, 10))
		logger := contextutil.GetLogger(ctx, zap.L()).With(
			zap.Int64("user_id", userID),
			zap.Int64("employee_id", employeeID),
		)
		ctx = contextutil.WithLogger(ctx, logger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Abort(c, err.HTTPStatus, err.Code, err.Message)
}
