// Package share implements the signed capability tokens with which a contact
// can be shared. A token carries nothing but the contact id and an expiry
// time; possession of a valid token is the entire authorization to view the
// redacted contact. Tokens are not single-use and cannot be revoked.
package share

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Validity is the fixed lifetime of a share token.
const Validity = 30 * 24 * time.Hour

// ErrInvalidToken is returned for every kind of verification failure:
// bad signature, malformed payload, or expiry. Callers must not be able to
// tell these cases apart, so that the token check cannot be used as an
// oracle.
var ErrInvalidToken = errors.New("invalid or expired share link")

// Issue creates a signed share token for the given contact, valid for the
// fixed validity window starting now.
func Issue(secret []byte, contactId int64) (string, error) {
	claims := jwt.MapClaims{
		"contactId": contactId,
		"exp":       time.Now().Add(Validity).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Verify checks signature and expiry of a share token and returns the
// contact id embedded in it. Any failure is reported as ErrInvalidToken.
func Verify(secret []byte, tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	// JSON numbers arrive as float64.
	contactId, ok := claims["contactId"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return int64(contactId), nil
}
