package services

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/quillboard/quillboard/internal/apperror"
	"github.com/quillboard/quillboard/internal/auth"
	"github.com/quillboard/quillboard/internal/avatar"
	"github.com/quillboard/quillboard/internal/mail"
	"github.com/quillboard/quillboard/internal/metrics"
	"github.com/quillboard/quillboard/internal/models"
	repo "github.com/quillboard/quillboard/internal/repository"
	"github.com/quillboard/quillboard/internal/session"
	"github.com/quillboard/quillboard/internal/validate"
)

type UserService struct {
	users    repo.Users
	sessions *session.Manager
	tokens   *auth.ResetTokenService
	avatars  *avatar.Store
	mailer   mail.Mailer
	baseURL  string
}

func NewUserService(users repo.Users, sessions *session.Manager, tokens *auth.ResetTokenService, avatars *avatar.Store, mailer mail.Mailer, baseURL string) *UserService {
	return &UserService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		avatars:  avatars,
		mailer:   mailer,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func checkUsername(errs *validate.Errs, username string) {
	errs.Check(
		validate.Required("username", username),
		validate.MinLen("username", username, 3),
		validate.MaxLen("username", username, 20),
	)
}

func checkEmail(errs *validate.Errs, email string) {
	errs.Check(
		validate.Required("email", email),
		validate.Email("email", email),
		validate.MaxLen("email", email, 120),
	)
}

// Register creates an account. Duplicate username or email surfaces as a
// field-level validation error; the user is not persisted in that case.
func (s *UserService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	var errs validate.Errs
	checkUsername(&errs, username)
	checkEmail(&errs, email)
	errs.Check(validate.MinLen("password", password, 6))
	if len(errs) > 0 {
		return models.User{}, apperror.Invalid(errs.Fields())
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	u, err := s.users.Create(ctx, username, email, hash)
	if err != nil {
		return models.User{}, conflictToValidation(err)
	}
	return u, nil
}

// Authenticate verifies credentials. Unknown email and wrong password are
// indistinguishable from the caller's side.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperror.KindOf(err) == apperror.NotFound {
			metrics.LoginsTotal.WithLabelValues("failed").Inc()
			return models.User{}, apperror.New(apperror.Unauthorized, "invalid email or password")
		}
		return models.User{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		metrics.LoginsTotal.WithLabelValues("failed").Inc()
		return models.User{}, apperror.New(apperror.Unauthorized, "invalid email or password")
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// UpdateProfile changes username/email and, when picture is non-nil, runs
// the upload through the avatar store. The replaced avatar file is removed
// once the new record is persisted.
func (s *UserService) UpdateProfile(ctx context.Context, actor models.User, username, email string, picture io.Reader, pictureName string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	var errs validate.Errs
	checkUsername(&errs, username)
	checkEmail(&errs, email)
	if len(errs) > 0 {
		return models.User{}, apperror.Invalid(errs.Fields())
	}

	oldAvatar := actor.Avatar
	if picture != nil {
		name, err := s.avatars.Save(picture, pictureName)
		if err != nil {
			return models.User{}, err
		}
		actor.Avatar = name
	}

	actor.Username = username
	actor.Email = email
	if err := s.users.Update(ctx, actor); err != nil {
		if picture != nil {
			s.avatars.Remove(actor.Avatar) // roll back the orphaned upload
		}
		return models.User{}, conflictToValidation(err)
	}
	if picture != nil && oldAvatar != actor.Avatar {
		s.avatars.Remove(oldAvatar)
	}
	return actor, nil
}

// RequestReset emails a reset link to the account behind email. An unknown
// address is not an error, so the endpoint cannot be used to probe for
// accounts. A mail transport failure is recoverable, not fatal.
func (s *UserService) RequestReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperror.KindOf(err) == apperror.NotFound {
			return nil
		}
		return err
	}

	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return err
	}

	body := "To reset your password, visit the following link:\n\n" +
		s.baseURL + "/reset_password/" + tok + "\n\n" +
		"If you did not make this request, simply ignore this email and no changes will be made.\n"
	if err := s.mailer.Send(u.Email, "Password Reset Request", body); err != nil {
		metrics.ResetMailTotal.WithLabelValues("failed").Inc()
		slog.Error("reset mail", "err", err)
		return apperror.Wrap(apperror.Transport, "could not send reset email", err)
	}
	metrics.ResetMailTotal.WithLabelValues("sent").Inc()
	return nil
}

// VerifyResetToken resolves a reset token to its user. Bad signature,
// expiry and a vanished user all collapse into the same invalid-token
// outcome so nothing leaks about which one happened.
func (s *UserService) VerifyResetToken(ctx context.Context, token string) (models.User, error) {
	uid, ok := s.tokens.Verify(token)
	if !ok {
		return models.User{}, apperror.New(apperror.NotFound, "invalid or expired token")
	}
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if apperror.KindOf(err) == apperror.NotFound {
			return models.User{}, apperror.New(apperror.NotFound, "invalid or expired token")
		}
		return models.User{}, err
	}
	return u, nil
}

// ResetPassword redeems a reset token. On success every live session of
// the user is revoked.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) (models.User, error) {
	u, err := s.VerifyResetToken(ctx, token)
	if err != nil {
		return models.User{}, err
	}

	var errs validate.Errs
	errs.Check(validate.MinLen("password", password, 6))
	if len(errs) > 0 {
		return models.User{}, apperror.Invalid(errs.Fields())
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return models.User{}, err
	}
	if err := s.sessions.RevokeAllForUser(ctx, u.ID); err != nil {
		slog.Error("revoke sessions after reset", "user", u.ID, "err", err)
	}
	return u, nil
}

// conflictToValidation turns a store uniqueness violation into the same
// field-level error shape the validators produce.
func conflictToValidation(err error) error {
	if apperror.KindOf(err) != apperror.Conflict {
		return err
	}
	fields := apperror.FieldsOf(err)
	if fields == nil {
		fields = map[string]string{"username": "already taken"}
	}
	return apperror.Invalid(fields)
}
