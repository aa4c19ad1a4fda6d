package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// KeyClass selects which signing secret a token is issued or verified under.
// Access and refresh tokens share the claim shape but must never validate
// under each other's key.
type KeyClass int

const (
	AccessKey KeyClass = iota
	RefreshKey
)

// Claims is the payload embedded in both token classes.
type Claims struct {
	Name   string `json:"name"`
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenPair bundles a short-lived access token with a long-lived refresh
// token. Pairs are ephemeral; only a hash of the refresh token is persisted.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenIssuer signs and verifies the two token classes with independent
// secrets and expirations.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (t *TokenIssuer) IssueAccessToken(name, userID string) (string, error) {
	return t.sign(name, userID, t.accessSecret, t.accessTTL)
}

func (t *TokenIssuer) IssueRefreshToken(name, userID string) (string, error) {
	return t.sign(name, userID, t.refreshSecret, t.refreshTTL)
}

// IssuePair signs both tokens concurrently; the two signatures are
// independent computations.
func (t *TokenIssuer) IssuePair(name, userID string) (*TokenPair, error) {
	pair := &TokenPair{}
	var g errgroup.Group
	g.Go(func() error {
		var err error
		pair.AccessToken, err = t.IssueAccessToken(name, userID)
		return err
	})
	g.Go(func() error {
		var err error
		pair.RefreshToken, err = t.IssueRefreshToken(name, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pair, nil
}

// Verify validates the signature and expiry under the given key class and
// returns the claims. Any failure is reported as ErrInvalidToken.
func (t *TokenIssuer) Verify(tokenStr string, class KeyClass) (*Claims, error) {
	secret := t.accessSecret
	if class == RefreshKey {
		secret = t.refreshSecret
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DecodeUnverified extracts claims without checking the signature. It exists
// only to populate the request context for convenience accessors ("who am I"
// hints) and must never feed an authorization decision.
func (t *TokenIssuer) DecodeUnverified(tokenStr string) *Claims {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil
	}
	return claims
}

func (t *TokenIssuer) sign(name, userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name:   name,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(secret)
}
