package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/pkg/health"
	"github.com/dungpham-npc/storefront/pkg/logger"
	"github.com/dungpham-npc/storefront/pkg/middleware"
)

const (
	customerID    = "11111111-1111-1111-1111-111111111111"
	adminID       = "22222222-2222-2222-2222-222222222222"
	productID     = "33333333-3333-3333-3333-333333333333"
	itemID        = "44444444-4444-4444-4444-444444444444"
	categoryID    = "55555555-5555-5555-5555-555555555555"
	recipientID   = "66666666-6666-6666-6666-666666666666"
	imageID       = "77777777-7777-7777-7777-777777777777"
	customerToken = "customer-token"
	adminToken    = "admin-token"
)

// ============================================================================
// Test helpers
// ============================================================================

type testEnv struct {
	auth       *mockAuthService
	users      *mockUserService
	recipients *mockRecipientService
	categories *mockCategoryService
	products   *mockProductService
	cart       *mockCartService
	router     http.Handler
}

func fakeValidator(_ context.Context, token string) (*middleware.Claims, error) {
	switch token {
	case customerToken:
		return &middleware.Claims{UserID: customerID, Email: "jane@example.com", Role: domain.Authority(domain.RoleCustomer)}, nil
	case adminToken:
		return &middleware.Claims{UserID: adminID, Email: "admin@example.com", Role: domain.Authority(domain.RoleAdmin)}, nil
	default:
		return nil, errors.New("token rejected")
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		auth:       new(mockAuthService),
		users:      new(mockUserService),
		recipients: new(mockRecipientService),
		categories: new(mockCategoryService),
		products:   new(mockProductService),
		cart:       new(mockCartService),
	}
	env.router = NewRouter(Services{
		Auth:       env.auth,
		Users:      env.users,
		Recipients: env.recipients,
		Categories: env.categories,
		Products:   env.products,
		Cart:       env.cart,
	}, RouterConfig{
		Validate:       fakeValidator,
		Health:         health.NewHandler(time.Second),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
		CORS:           middleware.DefaultCORSConfig(),
		RequestTimeout: 5 * time.Second,
	}, logger.Discard())

	t.Cleanup(func() {
		env.auth.AssertExpectations(t)
		env.users.AssertExpectations(t)
		env.recipients.AssertExpectations(t)
		env.categories.AssertExpectations(t)
		env.products.AssertExpectations(t)
		env.cart.AssertExpectations(t)
	})
	return env
}

func (env *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Code    *string         `json:"code"`
	Message *string         `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decode(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, dst), string(env.Data))
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	env := decode(t, rec)
	require.NotNil(t, env.Code)
	require.NotNil(t, env.Message)
	assert.Equal(t, message, *env.Message)
}

// ============================================================================
// Public allow-list and role gating
// ============================================================================

func TestRouter_PublicRoutesNeedNoToken(t *testing.T) {
	env := newTestEnv(t)
	env.categories.On("ListActive", mock.Anything).Return([]domain.Category{}, nil)
	env.products.On("Featured", mock.Anything).Return([]domain.Product{}, nil)

	for _, path := range []string{"/api/v1/categories", "/api/v1/products/featured", "/health/live", "/health/ready", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			rec := env.do(http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_MissingTokenIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/cart", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	out := decode(t, rec)
	require.NotNil(t, out.Code)
	assert.Equal(t, "401", *out.Code)
	assert.Equal(t, "Unauthorized access to /api/v1/cart", *out.Message)
}

func TestRouter_RejectedTokenIsInvalidToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/users/me", "forged", nil)

	assertError(t, rec, http.StatusUnauthorized, "Token is invalid or expired")
}

func TestRouter_PublicPrefixDoesNotCoverOtherMethods(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/products/"+productID+"/ratings", "", map[string]int{"rating": 4})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AdminRoutesRequireAdminRole(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/admin/users", customerToken, nil)

	assertError(t, rec, http.StatusForbidden, "Access to /api/v1/admin/users is forbidden")
}

func TestRouter_PreflightIsPublic(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_InvalidPathUUID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/products/not-a-uuid", "", nil)

	assertError(t, rec, http.StatusBadRequest, "Invalid argument: id - must be a valid UUID")
}
