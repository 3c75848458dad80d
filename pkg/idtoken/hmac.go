package idtoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HMACVerifier accepts HS256 tokens signed with a shared secret. It exists for
// local development and integration tests where no Firebase project is available.
type HMACVerifier struct {
	secret []byte
	now    func() time.Time
}

type devClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// NewHMACVerifier constructs a verifier for the shared secret.
func NewHMACVerifier(secret string) (*HMACVerifier, error) {
	if secret == "" {
		return nil, errors.New("hmac secret is required")
	}
	return &HMACVerifier{secret: []byte(secret), now: time.Now}, nil
}

// Verify implements Verifier.
func (v *HMACVerifier) Verify(_ context.Context, raw string) (*Identity, error) {
	claims := &devClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !validSubject(claims.Subject) {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return &Identity{Subject: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

// Issue signs a token for identity that expires after ttl.
func (v *HMACVerifier) Issue(identity Identity, ttl time.Duration) (string, error) {
	now := v.now()
	claims := devClaims{
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
