package idtoken

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultCertsURL publishes the x509 certificates that sign Firebase ID tokens.
	DefaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

	defaultKeyTTL   = time.Hour
	minRefreshDelay = time.Minute
	clockSkew       = 30 * time.Second
)

// FirebaseConfig configures a FirebaseVerifier.
type FirebaseConfig struct {
	ProjectID  string
	CertsURL   string
	HTTPClient *http.Client
	Now        func() time.Time
}

// FirebaseVerifier validates Firebase Authentication ID tokens (RS256) against
// the project's issuer and audience.
type FirebaseVerifier struct {
	projectID string
	issuer    string
	certsURL  string
	client    *http.Client
	now       func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
	fetchedAt time.Time
}

type firebaseClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	AuthTime int64  `json:"auth_time"`
	jwt.RegisteredClaims
}

// NewFirebaseVerifier constructs a verifier for the given project.
func NewFirebaseVerifier(cfg FirebaseConfig) (*FirebaseVerifier, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("firebase project id is required")
	}
	if cfg.CertsURL == "" {
		cfg.CertsURL = DefaultCertsURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &FirebaseVerifier{
		projectID: cfg.ProjectID,
		issuer:    "https://securetoken.google.com/" + cfg.ProjectID,
		certsURL:  cfg.CertsURL,
		client:    cfg.HTTPClient,
		now:       cfg.Now,
	}, nil
}

// Verify implements Verifier.
func (v *FirebaseVerifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	claims := &firebaseClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header missing kid")
		}
		return v.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, ErrKeysUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !validSubject(claims.Subject) {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	if claims.AuthTime > v.now().Add(clockSkew).Unix() {
		return nil, fmt.Errorf("%w: auth_time in the future", ErrInvalidToken)
	}
	return &Identity{Subject: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

func (v *FirebaseVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	now := v.now()

	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := now.Before(v.expiresAt)
	recentlyFetched := now.Sub(v.fetchedAt) < minRefreshDelay
	v.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}
	// Unknown kid with fresh keys usually means a rotation we have not seen yet.
	if fresh && recentlyFetched {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}

	if err := v.refresh(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if key, ok := v.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("unknown signing key %q", kid)
}

func (v *FirebaseVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeysUnavailable, err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeysUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: certs endpoint returned %d", ErrKeysUnavailable, resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("%w: decode certs: %v", ErrKeysUnavailable, err)
	}
	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pem := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return fmt.Errorf("%w: parse cert %s: %v", ErrKeysUnavailable, kid, err)
		}
		keys[kid] = key
	}

	now := v.now()
	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = now
	v.expiresAt = now.Add(maxAge(resp.Header.Get("Cache-Control")))
	v.mu.Unlock()
	return nil
}

func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds <= 0 {
			break
		}
		return time.Duration(seconds) * time.Second
	}
	return defaultKeyTTL
}
