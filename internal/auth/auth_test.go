package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

var testSecret = []byte("test-secret")

// TestHashAndCheckPassword hashes a password and checks it against the right and a wrong
// candidate.
func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("wintermute")
	assert.NoError(t, err)
	assert.NotEqual(t, "wintermute", hash)
	assert.True(t, CheckPassword(hash, "wintermute"))
	assert.False(t, CheckPassword(hash, "neuromancer"))
}

// TestSessionTokenRoundtrip issues a session token and parses it back.
func TestSessionTokenRoundtrip(t *testing.T) {
	token, err := IssueSessionToken(testSecret, 7)
	assert.NoError(t, err)

	userId, err := ParseSessionToken(testSecret, token)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), userId)
}

// TestParseSessionTokenRejectsGarbage parses invalid tokens and tokens signed with a different
// secret. All must fail.
func TestParseSessionTokenRejectsGarbage(t *testing.T) {
	_, err := ParseSessionToken(testSecret, "not a token")
	assert.Error(t, err)

	token, err := IssueSessionToken([]byte("other-secret"), 7)
	assert.NoError(t, err)
	_, err = ParseSessionToken(testSecret, token)
	assert.Error(t, err)
}

// middlewareRecorder runs one request with the given Authorization header through the Required
// middleware and a probe handler that records the owner id.
func middlewareRecorder(t *testing.T, authorization string) (*httptest.ResponseRecorder, *int64) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	var seenOwner int64
	router.GET("/probe", Required(testSecret), func(c *gin.Context) {
		seenOwner = OwnerId(c)
		c.Status(http.StatusOK)
	})
	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest("GET", "/probe", nil)
	if authorization != "" {
		request.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(recorder, request)
	return recorder, &seenOwner
}

// TestRequiredAcceptsValidToken sends a request with a valid Bearer token. It expects the
// handler to run with the owner id from the token.
func TestRequiredAcceptsValidToken(t *testing.T) {
	token, err := IssueSessionToken(testSecret, 13)
	assert.NoError(t, err)

	recorder, seenOwner := middlewareRecorder(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(13), *seenOwner)
}

// TestRequiredRejectsBadRequests sends requests without a header, with a malformed header, and
// with an invalid token. All must be answered with UNAUTHORIZED.
func TestRequiredRejectsBadRequests(t *testing.T) {
	for _, authorization := range []string{"", "Basic abc", "Bearer not-a-token"} {
		recorder, _ := middlewareRecorder(t, authorization)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code, "authorization: "+authorization)
	}
}
