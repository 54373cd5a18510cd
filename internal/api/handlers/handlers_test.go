package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeNext(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "/"},
		{"relative path", "/account", "/account"},
		{"path with query", "/post/3/update?draft=1", "/post/3/update?draft=1"},
		{"absolute url", "http://evil.test/phish", "/"},
		{"protocol relative", "//evil.test/phish", "/"},
		{"backslash trick", "/\\evil.test", "/"},
		{"bare word", "account", "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, safeNext(tc.in))
		})
	}
}
