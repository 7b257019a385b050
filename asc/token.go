package asc

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

const (
	tokenAudience = "appstoreconnect-v1"
	tokenLifetime = 20 * time.Minute

	// Reissue when the cached token is this close to expiring, so an
	// in-flight request never carries a token that lapses mid-request.
	tokenReissueWindow = 30 * time.Second
)

// TokenSource mints short-lived ES256 bearer tokens for the App Store
// Connect API and caches them until shortly before expiry.
type TokenSource struct {
	issuerID string
	keyID    string
	key      *ecdsa.PrivateKey
	now      func() time.Time

	mu      sync.Mutex
	cached  string
	expires time.Time
}

// NewTokenSource parses a PEM-encoded PKCS#8 EC private key (the .p8 file
// issued by the developer portal) and returns a token source for it.
func NewTokenSource(issuerID, keyID string, pemKey []byte) (*TokenSource, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("private key is not PEM encoded")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "parsing PKCS#8 private key")
	}
	ecKey, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.Errorf("private key is %T, want an EC key", parsed)
	}

	return &TokenSource{
		issuerID: issuerID,
		keyID:    keyID,
		key:      ecKey,
		now:      time.Now,
	}, nil
}

// Token returns a signed bearer token, reusing the cached one while it has
// comfortable lifetime left.
func (t *TokenSource) Token() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.cached != "" && now.Before(t.expires.Add(-tokenReissueWindow)) {
		return t.cached, nil
	}

	expires := now.Add(tokenLifetime)
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": t.issuerID,
		"iat": now.Unix(),
		"exp": expires.Unix(),
		"aud": tokenAudience,
	})
	token.Header["kid"] = t.keyID

	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", errors.Wrap(err, "signing API token")
	}

	t.cached = signed
	t.expires = expires
	return signed, nil
}
