package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "blogsphere/internal/errors"
	"blogsphere/internal/model"
)

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

const testSecret = "test-secret"

func TestGate_Authenticate(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	userID := uuid.New()

	adminToken, err := svc.IssueToken(userID, model.RoleAdmin)
	require.NoError(t, err)

	expired := NewJWTService(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.IssueToken(userID, model.RoleUser)
	require.NoError(t, err)

	otherKey, err := NewJWTService("other-secret", time.Hour).IssueToken(userID, model.RoleAdmin)
	require.NoError(t, err)

	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noRoleToken, err := noRole.SignedString([]byte(testSecret))
	require.NoError(t, err)

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "not-a-uuid",
		Role:   model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	badSubjectToken, err := badSubject.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name         string
		token        string
		expectedErr  error
		expectedRole model.Role
	}{
		{"valid admin token", adminToken, nil, model.RoleAdmin},
		{"bearer prefix tolerated", "Bearer " + adminToken, nil, model.RoleAdmin},
		{"missing role defaults to user", noRoleToken, nil, model.RoleUser},
		{"empty token", "", ErrMissingToken, ""},
		{"bearer prefix only", "Bearer ", ErrMissingToken, ""},
		{"bearer keyword padded", "  Bearer   ", ErrMissingToken, ""},
		{"bearer glued to token", "Bearer" + adminToken, ErrInvalidToken, ""},
		{"expired token", expiredToken, ErrInvalidToken, ""},
		{"wrong key", otherKey, ErrInvalidToken, ""},
		{"garbage", "abc.def.ghi", ErrInvalidToken, ""},
		{"malformed subject", badSubjectToken, ErrInvalidToken, ""},
	}

	gate := NewGate(svc, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := gate.Authenticate(context.Background(), tt.token)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
				assert.Nil(t, identity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, identity.UserID)
			assert.Equal(t, tt.expectedRole, identity.Role)
		})
	}
}

func TestGate_Authenticate_RevokedToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	token, err := svc.IssueToken(uuid.New(), model.RoleUser)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	store := new(MockTokenStore)
	store.On("IsRevoked", mock.Anything, claims.ID).Return(true, nil)

	_, err = NewGate(svc, store).Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	store.AssertExpectations(t)
}

func TestAuthorize(t *testing.T) {
	admin := &Identity{UserID: uuid.New(), Role: model.RoleAdmin}
	user := &Identity{UserID: uuid.New(), Role: model.RoleUser}

	assert.NoError(t, Authorize(admin, model.RoleAdmin))
	assert.NoError(t, Authorize(user, model.RoleUser, model.RoleAdmin))

	err := Authorize(nil, model.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	err = Authorize(user, model.RoleAdmin)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, "Access denied. Role 'user' is not authorized to access this resource.", err.Error())

	var domainErr *apperrors.Error
	assert.True(t, errors.As(err, &domainErr))
}

func TestJWTService_IssueToken(t *testing.T) {
	svc := NewJWTService(testSecret, 0)
	assert.Equal(t, DefaultTokenTTL, svc.TTL())

	userID := uuid.New()
	first, err := svc.IssueToken(userID, model.RoleUser)
	require.NoError(t, err)
	second, err := svc.IssueToken(userID, model.RoleUser)
	require.NoError(t, err)

	c1, err := svc.ValidateToken(first)
	require.NoError(t, err)
	c2, err := svc.ValidateToken(second)
	require.NoError(t, err)

	assert.Equal(t, userID.String(), c1.UserID)
	assert.NotEqual(t, c1.ID, c2.ID)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), c1.ExpiresAt.Time, time.Minute)
}

func TestTokenStore_NilCacheNeverRevokes(t *testing.T) {
	store := NewTokenStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti", time.Hour))
	revoked, err := store.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}
