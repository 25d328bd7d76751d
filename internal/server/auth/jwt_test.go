package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret"

var testNow = time.Unix(1_700_000_000, 0)

func newTestPair(t *testing.T) (*Issuer, *Verifier) {
	t.Helper()
	cfg, err := NewSigningConfig(testSecret, "HS256")
	require.NoError(t, err)
	return NewIssuer(cfg), NewVerifier(cfg)
}

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()
	iss, ver := newTestPair(t)

	for _, subject := range []string{"a@x.com", "bob@example.org"} {
		tok, err := iss.IssueAccess(subject, testNow, 30*time.Minute)
		require.NoError(t, err)

		claims, err := ver.Verify(tok, testNow)
		require.NoError(t, err)
		assert.Equal(t, subject, claims.Subject)
		assert.True(t, claims.ExpiresAt.Equal(testNow.Add(30*time.Minute)))
		assert.True(t, claims.IssuedAt.Equal(testNow))
	}
}

func TestVerify_Expiry(t *testing.T) {
	t.Parallel()
	iss, ver := newTestPair(t)
	ttl := 30 * time.Minute

	tok, err := iss.IssueRefresh("a@x.com", testNow, ttl)
	require.NoError(t, err)

	_, err = ver.Verify(tok, testNow.Add(ttl-time.Second))
	assert.NoError(t, err, "just before expiry is valid")

	_, err = ver.Verify(tok, testNow.Add(ttl))
	assert.ErrorIs(t, err, common.ErrInvalidToken, "expiry equal to now is invalid")

	_, err = ver.Verify(tok, testNow.Add(ttl+time.Second))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestIssue_SubSecondTTLOutlivesNow(t *testing.T) {
	t.Parallel()
	iss, ver := newTestPair(t)
	now := testNow.Add(500 * time.Millisecond)

	for _, ttl := range []time.Duration{time.Nanosecond, 200 * time.Millisecond, 1500 * time.Millisecond} {
		tok, err := iss.IssueAccess("a@x.com", now, ttl)
		require.NoError(t, err)

		claims, err := ver.Verify(tok, now)
		require.NoError(t, err, "ttl %s", ttl)
		assert.False(t, claims.ExpiresAt.Before(now.Add(ttl)), "exp is never earlier than now+ttl")
		assert.Equal(t, 0, claims.ExpiresAt.Nanosecond())
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()
	iss, ver := newTestPair(t)

	tok, err := iss.IssueAccess("a@x.com", testNow, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = ver.Verify(tampered, testNow)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()
	iss, ver := newTestPair(t)

	tok, err := iss.IssueAccess("a@x.com", testNow, time.Hour)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")

	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin@x.com","exp":9999999999}`))
	_, err = ver.Verify(parts[0]+"."+forged+"."+parts[2], testNow)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()
	iss, _ := newTestPair(t)

	tok, err := iss.IssueAccess("a@x.com", testNow, time.Hour)
	require.NoError(t, err)

	otherCfg, err := NewSigningConfig("another-secret", "HS256")
	require.NoError(t, err)
	_, err = NewVerifier(otherCfg).Verify(tok, testNow)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	_, ver := newTestPair(t)
	claims := jwt.MapClaims{"sub": "a@x.com", "exp": testNow.Add(time.Hour).Unix()}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ver.Verify(hs512, testNow)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ver.Verify(none, testNow)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_MissingClaims(t *testing.T) {
	t.Parallel()
	_, ver := newTestPair(t)

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{name: "no subject", claims: jwt.MapClaims{"exp": testNow.Add(time.Hour).Unix()}},
		{name: "empty subject", claims: jwt.MapClaims{"sub": "", "exp": testNow.Add(time.Hour).Unix()}},
		{name: "no expiry", claims: jwt.MapClaims{"sub": "a@x.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tt.claims).SignedString([]byte(testSecret))
			require.NoError(t, err)
			_, err = ver.Verify(tok, testNow)
			assert.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func TestVerify_Garbage(t *testing.T) {
	t.Parallel()
	_, ver := newTestPair(t)

	for _, tok := range []string{"", "garbage", "a.b.c", "...."} {
		_, err := ver.Verify(tok, testNow)
		assert.True(t, errors.Is(err, common.ErrInvalidToken), "token %q", tok)
	}
}

func TestIssue_WireFormat(t *testing.T) {
	t.Parallel()
	iss, _ := newTestPair(t)

	tok, err := iss.IssueAccess("a@x.com", testNow, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	assert.Contains(t, string(header), `"alg":"HS256"`)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(payload, &m))
	assert.Equal(t, "a@x.com", m["sub"])
	assert.Equal(t, float64(testNow.Add(time.Hour).Unix()), m["exp"])
}

func TestIssue_Deterministic(t *testing.T) {
	t.Parallel()
	iss, _ := newTestPair(t)

	a, err := iss.IssueAccess("a@x.com", testNow, time.Hour)
	require.NoError(t, err)
	b, err := iss.IssueAccess("a@x.com", testNow, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIssue_InvalidInput(t *testing.T) {
	t.Parallel()
	iss, _ := newTestPair(t)

	_, err := iss.IssueAccess("", testNow, time.Hour)
	assert.Error(t, err)
	_, err = iss.IssueRefresh("a@x.com", testNow, 0)
	assert.Error(t, err)
}

func TestNewSigningConfig(t *testing.T) {
	t.Parallel()

	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		cfg, err := NewSigningConfig("k", alg)
		require.NoError(t, err)
		assert.Equal(t, alg, cfg.Algorithm())
	}

	_, err := NewSigningConfig("", "HS256")
	assert.Error(t, err)
	for _, alg := range []string{"RS256", "none", "ES256", "bogus"} {
		_, err := NewSigningConfig("k", alg)
		assert.Error(t, err, alg)
	}
}
