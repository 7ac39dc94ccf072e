package apns

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// RefreshInterval is how long a signed provider token is reused. Apple rejects
// tokens older than roughly an hour; refreshing at 50 minutes keeps a safety
// margin so an in-flight request never races the hard expiry.
const RefreshInterval = 50 * time.Minute

// ErrBadCredentials marks configuration errors: malformed key material, an
// unsupported curve, or a key that cannot sign. These must not be retried.
var ErrBadCredentials = errors.New("apns: invalid provider credentials")

// TokenSource produces currently-valid APNs provider tokens, signing a new one
// only when the cached token leaves its reuse window. Safe for concurrent use;
// refresh is serialized so concurrent callers share a single signing operation.
type TokenSource struct {
	keyID  string
	teamID string
	key    *ecdsa.PrivateKey
	now    func() time.Time

	mu       sync.Mutex
	token    string
	issuedAt time.Time
}

// NewTokenSource parses the PEM-encoded P-256 private key and returns a token
// source for it. Key problems surface here, at construction, rather than on the
// first delivery attempt.
func NewTokenSource(keyID, teamID string, pemKey []byte) (*TokenSource, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", ErrBadCredentials, err)
	}
	if key.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: key curve %s, want P-256", ErrBadCredentials, key.Curve.Params().Name)
	}
	return &TokenSource{
		keyID:  keyID,
		teamID: teamID,
		key:    key,
		now:    time.Now,
	}, nil
}

// Token returns the cached provider token, signing a fresh one if the cache is
// empty or older than RefreshInterval.
func (s *TokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Sub(s.issuedAt) < RefreshInterval {
		return s.token, nil
	}

	issuedAt := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": s.teamID,
		"iat": issuedAt.Unix(),
	})
	token.Header["kid"] = s.keyID

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %v", ErrBadCredentials, err)
	}

	s.token = signed
	s.issuedAt = issuedAt
	return signed, nil
}

// Invalidate clears the cached token so the next Token call signs fresh. Called
// when Apple reports the current token as expired.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.issuedAt = time.Time{}
	s.mu.Unlock()
}
