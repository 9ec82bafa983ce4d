package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/logger"
)

const testSecret = "test-secret-that-is-at-least-32-bytes"

// --- memoryStore ---

type memoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{revoked: make(map[string]time.Duration)}
}

func (m *memoryStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.revoked[token] = ttl
	return nil
}

func (m *memoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[token]
	return ok, nil
}

func newTestTokenService(store RevocationStore) *TokenService {
	return NewTokenService(testSecret, time.Hour, store, logger.Discard())
}

var alice = Identity{UserID: "u-1", Email: "alice@shop.io", Role: "CUSTOMER"}

func TestGenerateToken_Claims(t *testing.T) {
	s := newTestTokenService(newMemoryStore())
	token, err := s.GenerateToken(alice)
	require.NoError(t, err)

	claims, err := s.parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "alice@shop.io", claims.Subject)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ROLE_CUSTOMER", claims.Role)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateToken_SameSecondSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newTestTokenService(newMemoryStore())
	frozen := time.Now()
	s.now = func() time.Time { return frozen }

	laptop, err := s.GenerateToken(alice)
	require.NoError(t, err)
	phone, err := s.GenerateToken(alice)
	require.NoError(t, err)
	assert.NotEqual(t, laptop, phone)

	require.NoError(t, s.InvalidateToken(ctx, laptop))
	assert.False(t, s.ValidateToken(ctx, laptop))
	assert.True(t, s.ValidateToken(ctx, phone))
}

func TestValidateToken_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestTokenService(newMemoryStore())

	token, err := s.GenerateToken(alice)
	require.NoError(t, err)
	assert.True(t, s.ValidateToken(ctx, token))

	require.NoError(t, s.InvalidateToken(ctx, token))
	assert.False(t, s.ValidateToken(ctx, token))
}

func TestValidateToken_Rejects(t *testing.T) {
	ctx := context.Background()
	s := newTestTokenService(newMemoryStore())
	good, err := s.GenerateToken(alice)
	require.NoError(t, err)

	other := NewTokenService("another-secret-also-32-bytes-long!!", time.Hour, newMemoryStore(), logger.Discard())
	foreign, err := other.GenerateToken(alice)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		UserID:           "u-1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice@shop.io", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":             "",
		"garbage":           "not.a.token",
		"tampered":          good[:len(good)-2] + "xx",
		"wrong secret":      foreign,
		"hs512 same secret": hs512,
		"unsigned alg none": none,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			assert.False(t, s.ValidateToken(ctx, token))
		})
	}
}

func TestValidateToken_Expired(t *testing.T) {
	s := newTestTokenService(newMemoryStore())
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := s.GenerateToken(alice)
	require.NoError(t, err)

	s.now = time.Now
	assert.False(t, s.ValidateToken(context.Background(), token))
}

func TestAuthenticate_StoreFailureFailsClosed(t *testing.T) {
	store := newMemoryStore()
	s := newTestTokenService(store)
	token, err := s.GenerateToken(alice)
	require.NoError(t, err)

	store.err = errors.New("redis: connection refused")
	claims, err := s.Authenticate(context.Background(), token)
	assert.Nil(t, claims)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
}

func TestAuthenticate_ReturnsClaims(t *testing.T) {
	s := newTestTokenService(newMemoryStore())
	token, err := s.GenerateToken(Identity{UserID: "u-2", Email: "root@shop.io", Role: "ADMIN"})
	require.NoError(t, err)

	claims, err := s.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-2", claims.UserID)
	assert.Equal(t, "ROLE_ADMIN", claims.Role)
}

func TestEmailFromToken(t *testing.T) {
	s := newTestTokenService(newMemoryStore())
	token, err := s.GenerateToken(alice)
	require.NoError(t, err)

	email, err := s.EmailFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@shop.io", email)
}

func TestEmailFromToken_FallsBackToEmailClaim(t *testing.T) {
	s := newTestTokenService(newMemoryStore())
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email:            "legacy@shop.io",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	email, err := s.EmailFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "legacy@shop.io", email)
}

func TestEmailFromToken_Malformed(t *testing.T) {
	s := newTestTokenService(newMemoryStore())
	assert.NotPanics(t, func() {
		_, err := s.EmailFromToken("garbage")
		assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
	})
}

func TestInvalidateToken_StoresRemainingLifetime(t *testing.T) {
	store := newMemoryStore()
	s := newTestTokenService(store)
	token, err := s.GenerateToken(alice)
	require.NoError(t, err)

	require.NoError(t, s.InvalidateToken(context.Background(), token))
	ttl := store.revoked[token]
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)
}

func TestInvalidateToken_NoopCases(t *testing.T) {
	store := newMemoryStore()
	s := newTestTokenService(store)

	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := s.GenerateToken(alice)
	require.NoError(t, err)
	s.now = time.Now

	assert.NoError(t, s.InvalidateToken(context.Background(), "garbage"))
	assert.NoError(t, s.InvalidateToken(context.Background(), expired))
	assert.Empty(t, store.revoked)
}

func TestInvalidateToken_StoreError(t *testing.T) {
	store := newMemoryStore()
	s := newTestTokenService(store)
	token, _ := s.GenerateToken(alice)

	store.err = errors.New("down")
	assert.Error(t, s.InvalidateToken(context.Background(), token))
}

func TestValidator(t *testing.T) {
	s := newTestTokenService(newMemoryStore())
	token, _ := s.GenerateToken(alice)

	claims, err := s.Validator()(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice@shop.io", claims.Email)
	assert.Equal(t, "ROLE_CUSTOMER", claims.Role)

	_, err = s.Validator()(context.Background(), "bad")
	assert.Error(t, err)
}

func TestValidator_FallsBackToEmailClaim(t *testing.T) {
	s := newTestTokenService(newMemoryStore())
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           "u-9",
		Role:             "ROLE_CUSTOMER",
		Email:            "legacy@shop.io",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := s.Validator()(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "legacy@shop.io", claims.Email)
}
