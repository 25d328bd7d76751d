// Package auth holds the credential primitives of gophauth: bcrypt password
// hashing and HMAC-signed JWT issuance and verification.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// SigningConfig is the process-wide signing secret and algorithm. It is
// built once at startup and never changed, so Issuer and Verifier can share
// it across goroutines without locking.
type SigningConfig struct {
	secret []byte
	method jwt.SigningMethod
}

// NewSigningConfig accepts HMAC algorithms only ("HS256", "HS384", "HS512").
func NewSigningConfig(secret string, algorithm string) (SigningConfig, error) {
	if secret == "" {
		return SigningConfig{}, errors.New("signing secret is empty")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return SigningConfig{}, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return SigningConfig{secret: []byte(secret), method: method}, nil
}

// Algorithm returns the JWT "alg" value used for signing.
func (c SigningConfig) Algorithm() string {
	return c.method.Alg()
}

// Issuer mints signed access and refresh tokens.
type Issuer struct {
	cfg SigningConfig
}

func NewIssuer(cfg SigningConfig) *Issuer {
	return &Issuer{cfg: cfg}
}

// IssueAccess returns an access token for subject expiring at now+ttl.
func (i *Issuer) IssueAccess(subject string, now time.Time, ttl time.Duration) (string, error) {
	return i.issue(subject, now, ttl)
}

// IssueRefresh returns a refresh token for subject expiring at now+ttl.
// Access and refresh tokens share one wire format.
func (i *Issuer) IssueRefresh(subject string, now time.Time, ttl time.Duration) (string, error) {
	return i.issue(subject, now, ttl)
}

func (i *Issuer) issue(subject string, now time.Time, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("non-positive ttl %s", ttl)
	}

	// exp is encoded in whole seconds; round up so the token outlives now.
	exp := now.Add(ttl)
	if whole := exp.Truncate(time.Second); whole.Before(exp) {
		exp = whole.Add(time.Second)
	}

	token := jwt.NewWithClaims(i.cfg.method, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(i.cfg.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verifier checks tokens produced by an Issuer sharing the same SigningConfig.
type Verifier struct {
	cfg SigningConfig
}

func NewVerifier(cfg SigningConfig) *Verifier {
	return &Verifier{cfg: cfg}
}

// Verify checks the signature, then requires now < exp and a non-empty
// subject. Every failure wraps common.ErrInvalidToken; no claim is returned
// from a token whose signature did not verify.
func (v *Verifier) Verify(tokenString string, now time.Time) (models.TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{v.cfg.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &jwt.RegisteredClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.cfg.secret, nil
	})
	if err != nil {
		return models.TokenClaims{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return models.TokenClaims{}, common.ErrInvalidToken
	}
	if claims.Subject == "" {
		return models.TokenClaims{}, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}

	out := models.TokenClaims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
