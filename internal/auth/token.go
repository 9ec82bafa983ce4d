package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dungpham-npc/storefront/internal/domain"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/middleware"
)

// RevocationStore remembers logged-out tokens until they would have expired.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Identity is what a token asserts about its bearer.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// Claims is the JWT payload. The subject is the user's email.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues, validates and revokes bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	store  RevocationStore
	logger *slog.Logger
	now    func() time.Time
}

// NewTokenService creates a token service signing with HS256.
func NewTokenService(secret string, ttl time.Duration, store RevocationStore, logger *slog.Logger) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// GenerateToken signs a token for id. The role claim carries the "ROLE_"
// authority form. Every token gets its own ID, so revoking one session never
// revokes another issued in the same second.
func (s *TokenService) GenerateToken(id Identity) (string, error) {
	now := s.now().UTC()
	claims := &Claims{
		UserID: id.UserID,
		Role:   domain.Authority(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken reports whether token is well-formed, correctly signed,
// unexpired and not revoked.
func (s *TokenService) ValidateToken(ctx context.Context, token string) bool {
	_, err := s.Authenticate(ctx, token)
	return err == nil
}

// Authenticate runs the ValidateToken checks and returns the claims. The
// revocation store is consulted first; if it cannot be reached the token is
// rejected.
func (s *TokenService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, apperrors.InvalidToken()
	}

	revoked, err := s.store.IsRevoked(ctx, token)
	if err != nil {
		s.logger.ErrorContext(ctx, "revocation lookup failed", slog.String("error", err.Error()))
		return nil, apperrors.InvalidToken().WithCause(err)
	}
	if revoked {
		s.logger.DebugContext(ctx, "revoked token presented")
		return nil, apperrors.InvalidToken()
	}

	claims, err := s.parse(token, true)
	if err != nil {
		s.logger.DebugContext(ctx, "token rejected", slog.String("error", err.Error()))
		return nil, apperrors.InvalidToken().WithCause(err)
	}
	return claims, nil
}

// EmailFromToken returns the subject of a correctly signed token, falling
// back to the email claim when the subject is absent. Expiry is not checked.
func (s *TokenService) EmailFromToken(token string) (string, error) {
	claims, err := s.parse(token, false)
	if err != nil {
		return "", apperrors.InvalidToken().WithCause(err)
	}
	email := claims.email()
	if email == "" {
		return "", apperrors.InvalidToken()
	}
	return email, nil
}

// email returns the subject, or the email claim when the subject is absent.
func (c *Claims) email() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.Email
}

// InvalidateToken revokes token for the rest of its lifetime. Tokens that
// cannot be parsed or have already expired are ignored.
func (s *TokenService) InvalidateToken(ctx context.Context, token string) error {
	claims, err := s.parse(token, false)
	if err != nil {
		s.logger.WarnContext(ctx, "ignoring invalidation of malformed token", slog.String("error", err.Error()))
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.store.Revoke(ctx, token, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Validator adapts the service to the auth middleware.
func (s *TokenService) Validator() middleware.TokenValidator {
	return func(ctx context.Context, token string) (*middleware.Claims, error) {
		claims, err := s.Authenticate(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.email(),
			Role:   claims.Role,
		}, nil
	}
}

func (s *TokenService) parse(token string, checkExpiry bool) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if !checkExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
