package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"autosalon/internal/domain"
	"autosalon/internal/security"
)

func newHasher(t *testing.T) *security.PasswordHasher {
	t.Helper()
	h, err := security.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewPasswordHasherRejectsCost(t *testing.T) {
	_, err := security.NewPasswordHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)
	_, err = security.NewPasswordHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

func TestHashIsSaltedAndVerifies(t *testing.T) {
	h := newHasher(t)

	d1, err := h.Hash("p1")
	require.NoError(t, err)
	d2, err := h.Hash("p1")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2, "same plaintext must give different digests")
	assert.NotContains(t, d1, "p1")
	assert.True(t, strings.HasPrefix(d1, "$2"))

	cost, err := bcrypt.Cost([]byte(d1))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	ok, err := h.Verify("p1", d1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = h.Verify("p1", d2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyMismatchIsNotAnError(t *testing.T) {
	h := newHasher(t)
	d, err := h.Hash("secret")
	require.NoError(t, err)

	for _, plain := range []string{"wrong", "", strings.Repeat("x", 200), "\x00\xff"} {
		ok, err := h.Verify(plain, d)
		assert.NoError(t, err, "plaintext %q", plain)
		assert.False(t, ok)
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := newHasher(t)
	for _, digest := range []string{"", "plaintext", "$2a$99$abcdefghijklmnopqrstuuabcdefghijklmnopqrstuvwxyz01234"} {
		ok, err := h.Verify("p1", digest)
		assert.False(t, ok)
		assert.True(t, errors.Is(err, domain.ErrInvalidDigest), "digest %q: %v", digest, err)
	}
}

func TestHashTooLong(t *testing.T) {
	h := newHasher(t)
	_, err := h.Hash(strings.Repeat("a", 73))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
