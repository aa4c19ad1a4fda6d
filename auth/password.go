package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes secrets (passwords and refresh tokens) with bcrypt after
// appending a server-wide pepper. The pepper keeps leaked digests useless
// without the server's secret, on top of bcrypt's per-digest salt.
type Hasher struct {
	pepper string
	cost   int
}

func NewHasher(pepper string, cost int) *Hasher {
	return &Hasher{pepper: pepper, cost: cost}
}

// Hash returns the bcrypt digest of the peppered secret. The peppered input
// is pre-digested with SHA-256 because bcrypt rejects inputs longer than 72
// bytes and refresh tokens are JWTs well past that limit.
func (h *Hasher) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(h.pepperedKey(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Compare reports whether secret matches the stored digest. A mismatch is a
// normal false result; an error is only returned for a malformed digest,
// which signals store corruption or misconfiguration.
func (h *Hasher) Compare(secret, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), h.pepperedKey(secret))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

func (h *Hasher) pepperedKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret + h.pepper))
	return []byte(base64.RawStdEncoding.EncodeToString(sum[:]))
}
