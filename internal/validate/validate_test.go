package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckCollectsFailures(t *testing.T) {
	t.Parallel()

	var errs Errs
	errs.Check(
		Required("username", ""),
		Required("email", "a@x.com"),
		MinLen("password", "pw", 6),
	)
	require.Len(t, errs, 2)
	require.Equal(t, map[string]string{
		"username": "required",
		"password": "must be at least 6 characters",
	}, errs.Fields())
	require.Contains(t, errs.Error(), "username: required")
}

func TestFields_FirstMessageWins(t *testing.T) {
	t.Parallel()

	var errs Errs
	errs.Check(Required("email", ""), Email("email", "nope"))
	require.Equal(t, "required", errs.Fields()["email"])
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	require.Nil(t, Required("f", "x"))
	require.NotNil(t, Required("f", "   "))

	require.Nil(t, MaxLen("f", "ab", 2))
	require.NotNil(t, MaxLen("f", "abc", 2))

	require.Nil(t, Email("f", "user@example.com"))
	require.NotNil(t, Email("f", "not-an-email"))
	require.Nil(t, Email("f", ""))

	var empty Errs
	require.Nil(t, empty.Fields())
}
