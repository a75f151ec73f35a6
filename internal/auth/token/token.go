package token

import (
	"errors"
	"fmt"
	"strconv"

	autherrors "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Values of the "typ" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Parse verifies an HS256 token and returns its claims.
func Parse(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherrors.ErrTokenExpired
		}
		return nil, autherrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, autherrors.ErrInvalidToken
	}
	return claims, nil
}

// ClaimInt64 reads a positive id that JSON decoded as float64 or a numeric string.
func ClaimInt64(claims jwt.MapClaims, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case float64:
		if v <= 0 || v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
