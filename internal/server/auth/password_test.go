package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestHasher_RoundTrip(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	for _, pw := range []string{"pw1", "", "correct horse battery staple", "пароль-üñí"} {
		hashed, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hashed)
		assert.True(t, h.Verify(pw, hashed), "password %q must verify", pw)
	}
}

func TestHasher_DifferentPasswordsDoNotVerify(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	hashed, err := h.Hash("pw1")
	require.NoError(t, err)

	assert.False(t, h.Verify("pw2", hashed))
	assert.False(t, h.Verify("PW1", hashed))
	assert.False(t, h.Verify("", hashed))
}

func TestHasher_SaltMakesHashesUnique(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestHasher_TruncatesAt72Bytes(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	base := strings.Repeat("a", MaxPasswordBytes)
	hashed, err := h.Hash(base + "tail-one")
	require.NoError(t, err)

	assert.True(t, h.Verify(base+"tail-two", hashed), "bytes beyond 72 must not distinguish")
	assert.True(t, h.Verify(base, hashed))
	assert.False(t, h.Verify(strings.Repeat("a", MaxPasswordBytes-1)+"b", hashed), "difference inside 72 bytes must matter")
}

func TestHasher_MalformedHashIsMismatch(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	for _, stored := range []string{
		"",
		"not-a-hash",
		"$2a$10$short",
		"$argon2id$v=19$m=65536,t=3,p=4$c2FsdHNhbHQ$aGFzaGhhc2g",
	} {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("pw", stored))
		})
	}
}

func TestHasher_OutputIsSelfDescribing(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	hashed, err := h.Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	// a hasher with a different cost still verifies it
	other, err := NewHasher(bcrypt.MinCost + 1)
	require.NoError(t, err)
	assert.True(t, other.Verify("pw", hashed))
}

func TestNewHasher_Cost(t *testing.T) {
	t.Parallel()

	h, err := NewHasher(0)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)

	_, err = NewHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)

	_, err = NewHasher(1)
	assert.Error(t, err)
}
