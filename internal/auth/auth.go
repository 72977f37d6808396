// Package auth covers password hashing, login session tokens, and the gin
// middleware that guards owner-scoped endpoints.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionValidity is the lifetime of a login session token.
const SessionValidity = 24 * time.Hour

// ownerKey is the gin context key under which the middleware stores the
// authenticated user's id.
const ownerKey = "ownerId"

// HashPassword returns the bcrypt hash of a clear-text password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword reports whether the clear-text password matches the hash.
func CheckPassword(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueSessionToken creates a signed session token for the given user.
func IssueSessionToken(secret []byte, userId int64) (string, error) {
	claims := jwt.MapClaims{
		"userId": userId,
		"exp":    time.Now().Add(SessionValidity).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseSessionToken verifies a session token and returns the user id it was
// issued for.
func ParseSessionToken(secret []byte, tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid session token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid session token")
	}
	userId, ok := claims["userId"].(float64)
	if !ok {
		return 0, errors.New("invalid session token")
	}
	return int64(userId), nil
}

// Required returns a middleware that rejects requests without a valid Bearer
// session token and stores the authenticated user's id in the gin context.
func Required(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		userId, err := ParseSessionToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		c.Set(ownerKey, userId)
		c.Next()
	}
}

// OwnerId returns the authenticated user's id as set by the Required
// middleware. It is zero on unauthenticated requests.
func OwnerId(c *gin.Context) int64 {
	return c.GetInt64(ownerKey)
}
