package identity

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"emarket/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for malformed, expired or revoked tokens
var ErrInvalidToken = errors.New("invalid session token")

type sessionClaims struct {
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewTokenIssuer builds an issuer. ttl bounds token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:  []byte(secret),
		ttl:     ttl,
		issuer:  "emarket",
		revoked: make(map[string]time.Time),
	}
}

// Issue returns a signed token for id
func (t *TokenIssuer) Issue(id models.Identity) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Name:    id.DisplayName,
		Picture: id.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   id.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify validates token and returns the identity it carries
func (t *TokenIssuer) Verify(token string) (models.Identity, error) {
	claims, err := t.parse(token)
	if err != nil {
		return models.Identity{}, err
	}

	t.mu.Lock()
	_, revoked := t.revoked[claims.ID]
	t.mu.Unlock()
	if revoked {
		return models.Identity{}, ErrInvalidToken
	}

	return models.Identity{ID: claims.Subject, DisplayName: claims.Name, PhotoURL: claims.Picture}, nil
}

// Revoke invalidates token until it would have expired anyway
func (t *TokenIssuer) Revoke(token string) error {
	claims, err := t.parse(token)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	for id, exp := range t.revoked {
		if exp.Before(now) {
			delete(t.revoked, id)
		}
	}
	t.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}

func (t *TokenIssuer) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
