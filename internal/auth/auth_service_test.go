package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/auth"
	autherrors "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/auth/errors"
	authMock "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/auth/mock"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/auth/token"
	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

var testTokens = auth.TokenConfig{
	Secret:     testSecret,
	AccessTTL:  15 * time.Minute,
	RefreshTTL: time.Hour,
}

func newUser(t *testing.T, password string) *auth.User {
	t.Helper()
	pw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	employeeID := int64(7)
	return &auth.User{
		ID:         42,
		EmployeeID: &employeeID,
		Name:       "Asha Rao",
		Email:      "asha@example.com",
		Password:   string(pw),
		Role:       "EMPLOYEE",
		IsActive:   true,
	}
}

func TestService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := authMock.NewMockRepository(ctrl)
	service := auth.NewService(mockRepo, testTokens)
	ctx := context.Background()
	user := newUser(t, "password123")

	t.Run("Success Login", func(t *testing.T) {
		mockRepo.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil)

		pair, resp, err := service.Login(ctx, user.Email, "password123")
		require.NoError(t, err)
		assert.Equal(t, int64(42), resp.ID)
		assert.Equal(t, int64(7), resp.EmployeeID)
		assert.Equal(t, "EMPLOYEE", resp.Role)

		claims, err := token.Parse(pair.AccessToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, float64(42), claims["user_id"])
		assert.Equal(t, float64(7), claims["employee_id"])
		assert.Equal(t, "EMPLOYEE", claims["role"])
		assert.Equal(t, token.TypeAccess, claims["typ"])

		refresh, err := token.Parse(pair.RefreshToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, token.TypeRefresh, refresh["typ"])
	})

	t.Run("Wrong Password", func(t *testing.T) {
		mockRepo.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil)

		_, _, err := service.Login(ctx, user.Email, "wrongpass")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		mockRepo.EXPECT().GetByEmail(ctx, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

		_, _, err := service.Login(ctx, "nobody@example.com", "password123")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("Repository Failure", func(t *testing.T) {
		mockRepo.EXPECT().GetByEmail(ctx, user.Email).Return(nil, errors.New("connection reset"))

		_, _, err := service.Login(ctx, user.Email, "password123")
		assert.Equal(t, apperror.CodeInternalError, apperror.CodeOf(err))
	})

	t.Run("Inactive User", func(t *testing.T) {
		inactive := *user
		inactive.IsActive = false
		mockRepo.EXPECT().GetByEmail(ctx, user.Email).Return(&inactive, nil)

		_, _, err := service.Login(ctx, user.Email, "password123")
		assert.ErrorIs(t, err, autherrors.ErrInactiveUser)
	})

	t.Run("No Employee Profile", func(t *testing.T) {
		orphan := *user
		orphan.EmployeeID = nil
		mockRepo.EXPECT().GetByEmail(ctx, user.Email).Return(&orphan, nil)

		_, _, err := service.Login(ctx, user.Email, "password123")
		assert.ErrorIs(t, err, autherrors.ErrNoEmployeeProfile)
	})
}

func TestService_RefreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := authMock.NewMockRepository(ctrl)
	service := auth.NewService(mockRepo, testTokens)
	ctx := context.Background()
	user := newUser(t, "password123")

	mockRepo.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil)
	pair, _, err := service.Login(ctx, user.Email, "password123")
	require.NoError(t, err)

	t.Run("Success Refresh", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(ctx, int64(42)).Return(user, nil)

		next, resp, err := service.RefreshToken(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, next.AccessToken)
		assert.Equal(t, user.Email, resp.Email)
	})

	t.Run("Access Token Rejected", func(t *testing.T) {
		_, _, err := service.RefreshToken(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		_, _, err := service.RefreshToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})

	t.Run("Deleted User", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(ctx, int64(42)).Return(nil, gorm.ErrRecordNotFound)

		_, _, err := service.RefreshToken(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})
}

func TestService_GetMe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := authMock.NewMockRepository(ctrl)
	service := auth.NewService(mockRepo, testTokens)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(ctx, int64(42)).Return(newUser(t, "x"), nil)

		resp, err := service.GetMe(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", resp.Name)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(ctx, int64(9)).Return(nil, gorm.ErrRecordNotFound)

		_, err := service.GetMe(ctx, 9)
		assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
	})
}
