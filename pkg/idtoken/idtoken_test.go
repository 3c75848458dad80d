package idtoken

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProject = "attendance-test"

type certServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newCertServer(t *testing.T, keys map[string]*rsa.PrivateKey) *certServer {
	t.Helper()
	certs := make(map[string]string, len(keys))
	for kid, key := range keys {
		tmpl := &x509.Certificate{
			SerialNumber: big.NewInt(1),
			Subject:      pkix.Name{CommonName: "securetoken.system.gserviceaccount.com"},
			NotBefore:    time.Now().Add(-time.Hour),
			NotAfter:     time.Now().Add(24 * time.Hour),
		}
		der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
		require.NoError(t, err)
		certs[kid] = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	}
	srv := &certServer{}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.hits.Add(1)
		w.Header().Set("Cache-Control", "public, max-age=19302, must-revalidate, no-transform")
		_ = json.NewEncoder(w).Encode(certs)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func signFirebase(t *testing.T, key *rsa.PrivateKey, kid string, mutate func(*firebaseClaims)) string {
	t.Helper()
	now := time.Now()
	claims := &firebaseClaims{
		Email:    "ada@example.edu",
		Name:     "Ada Lovelace",
		AuthTime: now.Add(-time.Minute).Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://securetoken.google.com/" + testProject,
			Audience:  jwt.ClaimStrings{testProject},
			Subject:   "firebase-uid-123456",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	if mutate != nil {
		mutate(claims)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	raw, err := token.SignedString(key)
	require.NoError(t, err)
	return raw
}

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestFirebaseVerifierAcceptsValidToken(t *testing.T) {
	key := newTestKey(t)
	srv := newCertServer(t, map[string]*rsa.PrivateKey{"kid-1": key})
	verifier, err := NewFirebaseVerifier(FirebaseConfig{ProjectID: testProject, CertsURL: srv.URL})
	require.NoError(t, err)

	identity, err := verifier.Verify(context.Background(), signFirebase(t, key, "kid-1", nil))
	require.NoError(t, err)
	assert.Equal(t, "firebase-uid-123456", identity.Subject)
	assert.Equal(t, "ada@example.edu", identity.Email)
	assert.Equal(t, "Ada Lovelace", identity.Name)

	_, err = verifier.Verify(context.Background(), signFirebase(t, key, "kid-1", nil))
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.hits.Load(), "certificates are cached")
}

func TestFirebaseVerifierRejects(t *testing.T) {
	key := newTestKey(t)
	other := newTestKey(t)
	srv := newCertServer(t, map[string]*rsa.PrivateKey{"kid-1": key})
	verifier, err := NewFirebaseVerifier(FirebaseConfig{ProjectID: testProject, CertsURL: srv.URL})
	require.NoError(t, err)

	cases := map[string]string{
		"wrong audience": signFirebase(t, key, "kid-1", func(c *firebaseClaims) { c.Audience = jwt.ClaimStrings{"other"} }),
		"wrong issuer":   signFirebase(t, key, "kid-1", func(c *firebaseClaims) { c.Issuer = "https://accounts.google.com" }),
		"expired":        signFirebase(t, key, "kid-1", func(c *firebaseClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour)) }),
		"empty subject":  signFirebase(t, key, "kid-1", func(c *firebaseClaims) { c.Subject = "" }),
		"future auth":    signFirebase(t, key, "kid-1", func(c *firebaseClaims) { c.AuthTime = time.Now().Add(time.Hour).Unix() }),
		"foreign key":    signFirebase(t, other, "kid-1", nil),
		"unknown kid":    signFirebase(t, key, "kid-9", nil),
		"garbage":        "not-a-jwt",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToken), err.Error())
		})
	}
}

func TestFirebaseVerifierKeysUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	verifier, err := NewFirebaseVerifier(FirebaseConfig{ProjectID: testProject, CertsURL: srv.URL})
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), signFirebase(t, newTestKey(t), "kid-1", nil))
	assert.ErrorIs(t, err, ErrKeysUnavailable)
}

func TestNewFirebaseVerifierRequiresProject(t *testing.T) {
	_, err := NewFirebaseVerifier(FirebaseConfig{})
	assert.Error(t, err)
}

func TestMaxAge(t *testing.T) {
	assert.Equal(t, 19302*time.Second, maxAge("public, max-age=19302, must-revalidate"))
	assert.Equal(t, defaultKeyTTL, maxAge("no-cache"))
	assert.Equal(t, defaultKeyTTL, maxAge("max-age=abc"))
}

func TestHMACVerifierRoundTrip(t *testing.T) {
	verifier, err := NewHMACVerifier("dev-secret")
	require.NoError(t, err)

	raw, err := verifier.Issue(Identity{Subject: "dev-user", Email: "dev@example.edu"}, time.Hour)
	require.NoError(t, err)

	identity, err := verifier.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "dev-user", identity.Subject)
	assert.Equal(t, "dev@example.edu", identity.Email)

	other, err := NewHMACVerifier("another-secret")
	require.NoError(t, err)
	_, err = other.Verify(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
