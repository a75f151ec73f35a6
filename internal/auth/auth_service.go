package auth

import (
	"context"
	"errors"
	"time"

	autherrors "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/auth/errors"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/auth/token"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/apperror"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/contextutil"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (TokenPair, AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (TokenPair, AuthResponse, error)
	GetMe(ctx context.Context, userID int64) (*AuthResponse, error)
}

type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type service struct {
	repo   Repository
	tokens TokenConfig
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, tokens TokenConfig, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, tokens: tokens, now: time.Now, logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (TokenPair, AuthResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("login lookup user failed", zap.Error(err))
			return TokenPair{}, AuthResponse{}, apperror.Internal(err)
		}
		return TokenPair{}, AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return TokenPair{}, AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (TokenPair, AuthResponse, error) {
	claims, err := token.Parse(refreshToken, s.tokens.Secret)
	if err != nil {
		return TokenPair{}, AuthResponse{}, err
	}
	if typ, _ := claims["typ"].(string); typ != token.TypeRefresh {
		return TokenPair{}, AuthResponse{}, autherrors.ErrInvalidToken
	}

	userID, ok := token.ClaimInt64(claims, "user_id")
	if !ok {
		return TokenPair{}, AuthResponse{}, autherrors.ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, AuthResponse{}, autherrors.ErrInvalidToken
		}
		return TokenPair{}, AuthResponse{}, apperror.Internal(err)
	}

	return s.issue(user)
}

func (s *service) GetMe(ctx context.Context, userID int64) (*AuthResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, autherrors.ErrUserNotFound
		}
		return nil, apperror.Internal(err)
	}

	resp := toAuthResponse(user)
	return &resp, nil
}

// issue checks that the account may act on leave data before signing tokens.
func (s *service) issue(user *User) (TokenPair, AuthResponse, error) {
	if !user.IsActive {
		return TokenPair{}, AuthResponse{}, autherrors.ErrInactiveUser
	}
	if user.EmployeeID == nil || *user.EmployeeID <= 0 {
		return TokenPair{}, AuthResponse{}, autherrors.ErrNoEmployeeProfile
	}

	access, err := s.generateToken(user, token.TypeAccess, s.tokens.AccessTTL)
	if err != nil {
		return TokenPair{}, AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refresh, err := s.generateToken(user, token.TypeRefresh, s.tokens.RefreshTTL)
	if err != nil {
		return TokenPair{}, AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, toAuthResponse(user), nil
}

func (s *service) generateToken(user *User, typ string, expiry time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id":     user.ID,
		"employee_id": *user.EmployeeID,
		"role":        user.Role,
		"typ":         typ,
		"iat":         now.Unix(),
		"exp":         now.Add(expiry).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.tokens.Secret))
}

func toAuthResponse(user *User) AuthResponse {
	resp := AuthResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
	if user.EmployeeID != nil {
		resp.EmployeeID = *user.EmployeeID
	}
	return resp
}
