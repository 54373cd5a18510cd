package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quillboard/quillboard/internal/apperror"
	"github.com/quillboard/quillboard/internal/auth"
	"github.com/quillboard/quillboard/internal/avatar"
	"github.com/quillboard/quillboard/internal/mail"
	"github.com/quillboard/quillboard/internal/models"
	"github.com/quillboard/quillboard/internal/repository/memory"
	"github.com/quillboard/quillboard/internal/session"
)

const baseURL = "http://blog.test"

type fixture struct {
	users     *UserService
	posts     *PostService
	repos     memory.Repositories
	sessions  *session.Manager
	mailer    *mail.Recorder
	avatarDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewRepositories()
	sessions := session.NewManager(repos.Sessions, time.Hour, 24*time.Hour)
	tokens := auth.NewResetTokenService("test-secret", 30*time.Minute)
	dir := t.TempDir()
	avatars, err := avatar.NewStore(dir)
	require.NoError(t, err)
	mailer := &mail.Recorder{}
	return &fixture{
		users:     NewUserService(repos.Users, sessions, tokens, avatars, mailer, baseURL),
		posts:     NewPostService(repos.Posts, repos.Users),
		repos:     repos,
		sessions:  sessions,
		mailer:    mailer,
		avatarDir: dir,
	}
}

func (f *fixture) register(t *testing.T, username, email, password string) models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), username, email, password)
	require.NoError(t, err)
	return u
}

func pngBytes(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 10 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "alice", "alice@x.com", "pw123456")
	require.Equal(t, "alice", u.Username)
	require.Equal(t, models.DefaultAvatar, u.Avatar)
	require.NotEqual(t, "pw123456", u.PasswordHash)

	got, err := f.users.Authenticate(ctx, "alice@x.com", "pw123456")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = f.users.Authenticate(ctx, "alice@x.com", "wrong")
	require.Equal(t, apperror.Unauthorized, apperror.KindOf(err))

	_, err = f.users.Authenticate(ctx, "nobody@x.com", "pw123456")
	require.Equal(t, apperror.Unauthorized, apperror.KindOf(err))
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		email    string
		password string
		field    string
	}{
		{"short username", "ab", "a@x.com", "pw123456", "username"},
		{"long username", strings.Repeat("a", 21), "a@x.com", "pw123456", "username"},
		{"bad email", "alice", "not-an-email", "pw123456", "email"},
		{"long email", "alice", strings.Repeat("a", 115) + "@x.com", "pw123456", "email"},
		{"short password", "alice", "a@x.com", "pw", "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.users.Register(ctx, tc.username, tc.email, tc.password)
			require.Equal(t, apperror.Validation, apperror.KindOf(err))
			require.Contains(t, apperror.FieldsOf(err), tc.field)
		})
	}
}

func TestRegister_DuplicateEmailNotPersisted(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "alice", "alice@x.com", "pw123456")

	_, err := f.users.Register(ctx, "bob", "alice@x.com", "pw123456")
	require.Equal(t, apperror.Validation, apperror.KindOf(err))
	require.Contains(t, apperror.FieldsOf(err), "email")

	// the second user must not exist
	_, err = f.users.GetByUsername(ctx, "bob")
	require.Equal(t, apperror.NotFound, apperror.KindOf(err))
}

func TestUpdateProfile_ReplacesAvatarAndDeletesOld(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice", "alice@x.com", "pw123456")

	u2, err := f.users.UpdateProfile(ctx, u, "alice", "alice@x.com", pngBytes(t, 300, 200), "me.png")
	require.NoError(t, err)
	require.NotEqual(t, models.DefaultAvatar, u2.Avatar)
	require.FileExists(t, filepath.Join(f.avatarDir, u2.Avatar))

	u3, err := f.users.UpdateProfile(ctx, u2, "alice", "alice@x.com", pngBytes(t, 300, 200), "me.png")
	require.NoError(t, err)
	require.NotEqual(t, u2.Avatar, u3.Avatar)
	require.FileExists(t, filepath.Join(f.avatarDir, u3.Avatar))

	// the replaced file is gone
	_, err = os.Stat(filepath.Join(f.avatarDir, u2.Avatar))
	require.True(t, os.IsNotExist(err))
}

func TestUpdateProfile_DuplicateUsername(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "alice@x.com", "pw123456")
	bob := f.register(t, "bob", "bob@x.com", "pw123456")

	_, err := f.users.UpdateProfile(ctx, bob, "alice", "bob@x.com", nil, "")
	require.Equal(t, apperror.Validation, apperror.KindOf(err))
	require.Contains(t, apperror.FieldsOf(err), "username")
}

func resetLink(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, baseURL+"/reset_password/") {
			return strings.TrimPrefix(line, baseURL+"/reset_password/")
		}
	}
	t.Fatal("no reset link in mail body")
	return ""
}

func TestResetFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice", "alice@x.com", "pw123456")

	sess, err := f.sessions.Issue(ctx, u.ID, false)
	require.NoError(t, err)

	require.NoError(t, f.users.RequestReset(ctx, "alice@x.com"))
	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "alice@x.com", sent[0].To)
	require.Equal(t, "Password Reset Request", sent[0].Subject)

	token := resetLink(t, sent[0].Body)

	got, err := f.users.VerifyResetToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = f.users.ResetPassword(ctx, token, "newpass99")
	require.NoError(t, err)

	// old password no longer works, new one does
	_, err = f.users.Authenticate(ctx, "alice@x.com", "pw123456")
	require.Equal(t, apperror.Unauthorized, apperror.KindOf(err))
	_, err = f.users.Authenticate(ctx, "alice@x.com", "newpass99")
	require.NoError(t, err)

	// live sessions were revoked
	_, ok := f.sessions.Resolve(ctx, sess.Token)
	require.False(t, ok)
}

func TestRequestReset_UnknownEmailSendsNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.users.RequestReset(context.Background(), "nobody@x.com"))
	require.Empty(t, f.mailer.Sent())
}

func TestRequestReset_TransportFailureIsRecoverable(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.register(t, "alice", "alice@x.com", "pw123456")
	f.mailer.Err = os.ErrDeadlineExceeded

	err := f.users.RequestReset(context.Background(), "alice@x.com")
	require.Equal(t, apperror.Transport, apperror.KindOf(err))
}

func TestResetPassword_InvalidToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.users.ResetPassword(context.Background(), "bogus", "newpass99")
	require.Equal(t, apperror.NotFound, apperror.KindOf(err))

	_, err = f.users.VerifyResetToken(context.Background(), "")
	require.Equal(t, apperror.NotFound, apperror.KindOf(err))
}
