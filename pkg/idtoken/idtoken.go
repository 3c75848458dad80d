// Package idtoken verifies bearer credentials and extracts the caller identity.
package idtoken

import (
	"context"
	"errors"
)

var (
	// ErrInvalidToken is returned for malformed, expired, or rejected credentials.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrKeysUnavailable is returned when signing keys cannot be fetched.
	ErrKeysUnavailable = errors.New("signing keys unavailable")
)

// Identity is the verified subject of a credential.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Verifier validates a raw bearer token.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*Identity, error)
}

const maxSubjectLength = 128

func validSubject(sub string) bool {
	return sub != "" && len(sub) <= maxSubjectLength
}
