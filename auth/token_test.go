package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, now time.Time) *TokenService {
	t.Helper()
	s, err := NewTokenService(testSecret, 100*time.Hour)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService("", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(testSecret, 0)
	assert.Error(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestService(t, time.Now())
	tok, err := s.Issue("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)

	id, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", id)
}

func TestVerifyExpiry(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestService(t, issuedAt)
	tok, err := s.Issue("user-1")
	require.NoError(t, err)

	s.now = func() time.Time { return issuedAt.Add(99 * time.Hour) }
	_, err = s.Verify(tok)
	assert.NoError(t, err)

	s.now = func() time.Time { return issuedAt.Add(101 * time.Hour) }
	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyWrongKey(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := newTestService(t, now)
	tok, err := s.Issue("user-1")
	require.NoError(t, err)

	other, err := NewTokenService("another-secret-another-secret-xx", 100*time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	s := newTestService(t, time.Now())
	for _, tok := range []string{"", "abc", "a.b", "a.b.c"} {
		_, err := s.Verify(tok)
		assert.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}

func TestVerifyRejectsAnyCorruptedByte(t *testing.T) {
	t.Parallel()

	s := newTestService(t, time.Now())
	tok, err := s.Issue("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)

	for i := range tok {
		b := []byte(tok)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, err := s.Verify(string(b))
		assert.Error(t, err, "corruption at byte %d accepted", i)
	}
}
