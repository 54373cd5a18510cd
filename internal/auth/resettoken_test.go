package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResetToken_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := NewResetTokenService("super-secret", 30*time.Minute)

	tok, err := svc.Issue(42)
	require.NoError(t, err)

	uid, ok := svc.Verify(tok)
	require.True(t, ok)
	require.Equal(t, int64(42), uid)
}

func TestResetToken_Expiry(t *testing.T) {
	t.Parallel()

	svc := NewResetTokenService("super-secret", 30*time.Minute)
	issued := time.Now()
	svc.now = func() time.Time { return issued }

	tok, err := svc.Issue(7)
	require.NoError(t, err)

	// 10 minutes in, still valid
	svc.now = func() time.Time { return issued.Add(10 * time.Minute) }
	uid, ok := svc.Verify(tok)
	require.True(t, ok)
	require.Equal(t, int64(7), uid)

	// 31 minutes in, past the window
	svc.now = func() time.Time { return issued.Add(31 * time.Minute) }
	_, ok = svc.Verify(tok)
	require.False(t, ok)
}

func TestResetToken_Tampered(t *testing.T) {
	t.Parallel()

	svc := NewResetTokenService("super-secret", 30*time.Minute)
	tok, err := svc.Issue(42)
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		mutated := []byte(tok)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		if string(mutated) == tok {
			continue
		}
		if _, ok := svc.Verify(string(mutated)); ok {
			t.Fatalf("tampered token at byte %d still verified", i)
		}
	}
}

func TestResetToken_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewResetTokenService("secret-one", 30*time.Minute)
	verifier := NewResetTokenService("secret-two", 30*time.Minute)

	tok, err := issuer.Issue(42)
	require.NoError(t, err)

	_, ok := verifier.Verify(tok)
	require.False(t, ok)
}

func TestResetToken_Malformed(t *testing.T) {
	t.Parallel()

	svc := NewResetTokenService("super-secret", 30*time.Minute)
	for _, tok := range []string{"", "garbage", "a.b.c", "....."} {
		_, ok := svc.Verify(tok)
		require.False(t, ok, "token %q", tok)
	}
}
