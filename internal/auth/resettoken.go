package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ResetTokenService issues and verifies the signed tokens used by the
// password-reset flow. Tokens are stateless: they carry the user id and
// their own expiry, so nothing is persisted between issue and verify.
type ResetTokenService struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewResetTokenService(secret string, maxAge time.Duration) *ResetTokenService {
	return &ResetTokenService{secret: []byte(secret), maxAge: maxAge, now: time.Now}
}

type resetClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

func (s *ResetTokenService) Issue(userID int64) (string, error) {
	now := s.now()
	claims := resetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify returns the user id bound to token. Malformed input, a bad
// signature and an expired window all read as not ok.
func (s *ResetTokenService) Verify(token string) (int64, bool) {
	claims := &resetClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil || claims.UserID == 0 {
		return 0, false
	}
	return claims.UserID, true
}
