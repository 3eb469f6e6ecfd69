package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

const defaultTokenTTL = 15 * time.Minute

type identityClaims struct {
	Username    string             `json:"username"`
	FirstName   string             `json:"first_name,omitempty"`
	LastName    string             `json:"last_name,omitempty"`
	Origin      domain.Origin      `json:"origin"`
	GroupIDs    []string           `json:"groups,omitempty"`
	Permissions domain.Permissions `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs resolved identities as HS256 JWTs for downstream
// services. With an empty secret it is disabled.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Enabled reports whether a signing secret is configured.
func (s *TokenService) Enabled() bool {
	return len(s.secret) > 0
}

// Issue signs identity. A non-positive ttl uses the configured default.
func (s *TokenService) Issue(identity *domain.Identity, ttl time.Duration) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, domain.ErrTokensDisabled
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.now()
	exp := now.Add(ttl)
	claims := identityClaims{
		Username:    identity.Username,
		FirstName:   identity.FirstName,
		LastName:    identity.LastName,
		Origin:      identity.Origin,
		GroupIDs:    identity.GroupIDs,
		Permissions: identity.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies token and rebuilds the identity it carries.
func (s *TokenService) Parse(token string) (*domain.Identity, error) {
	if !s.Enabled() {
		return nil, domain.ErrTokensDisabled
	}

	var claims identityClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("%w: missing username", domain.ErrInvalidToken)
	}

	groups := claims.GroupIDs
	if groups == nil {
		groups = []string{}
	}
	return &domain.Identity{
		ID:          claims.Subject,
		Username:    claims.Username,
		FirstName:   claims.FirstName,
		LastName:    claims.LastName,
		GroupIDs:    groups,
		Permissions: claims.Permissions.Clone(),
		Origin:      claims.Origin,
	}, nil
}
