// Package identity verifies bearer tokens issued by the identity provider and
// exposes the caller's entitlements. It gates nothing by itself; handlers
// decide which operations each entitlement allows.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Subscription tiers as recorded by the billing webhook.
const (
	TierFree    = "free"
	TierMonthly = "monthly"
	TierAnnual  = "annual"
)

// Entitlements are read-only facts about the signed-in user.
type Entitlements struct {
	UserID       uuid.UUID
	IsAdmin      bool
	IsSuperAdmin bool
	Tier         string
}

// IsPremium reports whether the user holds a paid subscription.
func (e Entitlements) IsPremium() bool {
	return e.Tier == TierMonthly || e.Tier == TierAnnual
}

// Claims is the token payload. The user id travels in the subject.
type Claims struct {
	Admin      bool   `json:"admin,omitempty"`
	SuperAdmin bool   `json:"super_admin,omitempty"`
	Tier       string `json:"tier,omitempty"`
	jwt.RegisteredClaims
}

type Verifier interface {
	Verify(token string) (Entitlements, error)
}

// Service signs and verifies HS256 tokens with a shared secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if ttl < time.Hour {
		return nil, fmt.Errorf("token lifetime must be at least 1 hour, got: %s", ttl)
	}
	return &Service{secret: []byte(secret), ttl: ttl}, nil
}

// Issue mints a token for e. The server only uses it for development tokens;
// production tokens come from the identity provider.
func (s *Service) Issue(e Entitlements) (string, error) {
	now := time.Now()
	tier := e.Tier
	if tier == "" {
		tier = TierFree
	}
	claims := &Claims{
		Admin:      e.IsAdmin,
		SuperAdmin: e.IsSuperAdmin,
		Tier:       tier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   e.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) Verify(tokenString string) (Entitlements, error) {
	if tokenString == "" {
		return Entitlements{}, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return Entitlements{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return Entitlements{}, errors.New("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Entitlements{}, fmt.Errorf("invalid subject in token: %w", err)
	}
	return Entitlements{
		UserID:       userID,
		IsAdmin:      claims.Admin || claims.SuperAdmin,
		IsSuperAdmin: claims.SuperAdmin,
		Tier:         claims.Tier,
	}, nil
}

type contextKey string

const entitlementsKey contextKey = "entitlements"

func WithEntitlements(ctx context.Context, e Entitlements) context.Context {
	return context.WithValue(ctx, entitlementsKey, e)
}

// FromContext returns the entitlements stored by Middleware.
func FromContext(ctx context.Context) (Entitlements, bool) {
	e, ok := ctx.Value(entitlementsKey).(Entitlements)
	return e, ok
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Middleware rejects requests without a valid bearer token and stores the
// caller's entitlements in the request context.
func Middleware(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			e, err := verifier.Verify(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithEntitlements(r.Context(), e)))
		})
	}
}
