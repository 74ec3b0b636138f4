package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind is the category of account a token was issued for. Tokens for one
// kind are never accepted where the other kind is expected.
type Kind string

const (
	KindUser       Kind = "user"
	KindInstructor Kind = "instructor"
)

const (
	SessionTTL = 48 * time.Hour
	ResetTTL   = time.Hour
)

var (
	ErrExpired      = errors.New("token expired")
	ErrBadSignature = errors.New("token signature invalid")
	ErrMalformed    = errors.New("token malformed")
	ErrWrongKind    = errors.New("token issued for a different subject kind")
)

// SessionClaims carries the subject id under a kind-specific claim name,
// so a user session can never be replayed against an instructor endpoint.
type SessionClaims struct {
	UserID       string `json:"userId,omitempty"`
	InstructorID string `json:"instructorId,omitempty"`
	jwt.RegisteredClaims
}

func Issue(kind Kind, subjectID string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	switch kind {
	case KindUser:
		claims.UserID = subjectID
	case KindInstructor:
		claims.InstructorID = subjectID
	default:
		return "", ErrWrongKind
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Validate returns the subject id embedded in tokenStr, or one of the
// rejection errors above. An expired token is reported as expired even
// though its signature is also checked.
func Validate(tokenStr string, kind Kind, secret []byte) (string, error) {
	var claims SessionClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrBadSignature
		}
		return secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrBadSignature
		default:
			return "", ErrMalformed
		}
	}
	if !tkn.Valid {
		return "", ErrMalformed
	}

	var subject string
	switch kind {
	case KindUser:
		subject = claims.UserID
	case KindInstructor:
		subject = claims.InstructorID
	}
	if subject == "" {
		return "", ErrWrongKind
	}
	return subject, nil
}
