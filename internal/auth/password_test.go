package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw123456")
	require.NoError(t, err)
	require.NotEqual(t, "pw123456", hash)

	require.True(t, CheckPassword(hash, "pw123456"))
	require.False(t, CheckPassword(hash, "pw1234567"))
	require.False(t, CheckPassword(hash, ""))
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same input")
	require.NoError(t, err)
	h2, err := HashPassword("same input")
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)

	require.True(t, CheckPassword(h1, "same input"))
	require.True(t, CheckPassword(h2, "same input"))
}

func TestCheckPassword_CorruptHash(t *testing.T) {
	t.Parallel()

	require.False(t, CheckPassword("", "anything"))
	require.False(t, CheckPassword("not-a-bcrypt-hash", "anything"))
	require.False(t, CheckPassword("$2a$10$garbage", "anything"))
}
