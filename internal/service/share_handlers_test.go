package service

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/dirk.krummacker/contact-hub/internal/auth"
	"gitlab.com/dirk.krummacker/contact-hub/internal/share"
)

// TestShareContact requests a share link for an owned contact. It expects a token that decodes
// back to the contact id and a URL pointing at the public share endpoint.
func TestShareContact(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	rows := newContactRows(mock)
	addContact(rows, 56, 7, "Erika", "Mustermann", "owes me lunch", `[]`)
	mock.ExpectQuery("SELECT \\* FROM contacts WHERE id = \\? AND ownerid = \\?").
		WithArgs(int64(56), int64(7)).
		WillReturnRows(rows)

	recorder := runTest(db, "POST", "/api/contacts/56/share", nil, 7)
	body := decodeBody(t, recorder, http.StatusOK)

	token, _ := body["shareToken"].(string)
	assert.NotEmpty(t, token)
	contactId, err := share.Verify(testSecret, token)
	assert.NoError(t, err)
	assert.Equal(t, int64(56), contactId)
	assert.Equal(t, "http://localhost:8080/api/share/"+token, body["shareUrl"])
	assertExpectationsMet(t, mock)
}

// TestShareContactNotOwned requests a share link for a contact of another user. It expects a NOT
// FOUND answer and no token.
func TestShareContactNotOwned(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	mock.ExpectQuery("SELECT \\* FROM contacts WHERE id = \\? AND ownerid = \\?").
		WithArgs(int64(56), int64(8)).
		WillReturnRows(newContactRows(mock))

	recorder := runTest(db, "POST", "/api/contacts/56/share", nil, 8)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assertExpectationsMet(t, mock)
}

// TestShareContactQR requests the QR variant of a share link. It expects the same kind of share
// URL plus a PNG data URL.
func TestShareContactQR(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	rows := newContactRows(mock)
	addContact(rows, 56, 7, "Erika", "Mustermann", "", `[]`)
	mock.ExpectQuery("SELECT \\* FROM contacts WHERE id = \\? AND ownerid = \\?").
		WithArgs(int64(56), int64(7)).
		WillReturnRows(rows)

	recorder := runTest(db, "GET", "/api/contacts/56/qr", nil, 7)
	body := decodeBody(t, recorder, http.StatusOK)

	qrCode, _ := body["qrCode"].(string)
	assert.True(t, strings.HasPrefix(qrCode, "data:image/png;base64,"), "qrCode: "+qrCode)
	shareUrl, _ := body["shareUrl"].(string)
	assert.True(t, strings.HasPrefix(shareUrl, "http://localhost:8080/api/share/"), "shareUrl: "+shareUrl)
	assertExpectationsMet(t, mock)
}

// TestResolveSharedContact redeems a valid share token. It expects the contact without the
// private note and owner fields. No session token is needed.
func TestResolveSharedContact(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	rows := newContactRows(mock)
	addContact(rows, 29, 7, "Erika", "Mustermann", "owes me lunch", `["tennis"]`)
	mock.ExpectQuery("SELECT \\* FROM contacts WHERE id = \\?").
		WithArgs(int64(29)).
		WillReturnRows(rows)

	token, err := share.Issue(testSecret, 29)
	assert.NoError(t, err)

	recorder := runTest(db, "GET", "/api/share/"+token, nil, 0)
	body := decodeBody(t, recorder, http.StatusOK)
	assert.Equal(t, "Erika", body["firstName"])
	assert.Equal(t, "Mustermann", body["lastName"])
	assert.NotContains(t, body, "privateNote")
	assert.NotContains(t, body, "ownerId")
	assertExpectationsMet(t, mock)
}

// TestResolveSharedContactTwice redeems the same share token twice. Tokens are not single-use,
// so both redemptions must succeed identically.
func TestResolveSharedContactTwice(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	for i := 0; i < 2; i++ {
		rows := newContactRows(mock)
		addContact(rows, 29, 7, "Erika", "Mustermann", "", `[]`)
		mock.ExpectQuery("SELECT \\* FROM contacts WHERE id = \\?").
			WithArgs(int64(29)).
			WillReturnRows(rows)
	}

	token, err := share.Issue(testSecret, 29)
	assert.NoError(t, err)

	router := initializeContactHub(db)
	first := performRequest(router, "GET", "/api/share/"+token)
	second := performRequest(router, "GET", "/api/share/"+token)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assertExpectationsMet(t, mock)
}

// TestResolveSharedContactDeleted redeems a still-valid token whose contact has been deleted in
// the meantime. It expects a NOT FOUND answer.
func TestResolveSharedContactDeleted(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	mock.ExpectQuery("SELECT \\* FROM contacts WHERE id = \\?").
		WithArgs(int64(29)).
		WillReturnRows(newContactRows(mock))

	token, err := share.Issue(testSecret, 29)
	assert.NoError(t, err)

	recorder := runTest(db, "GET", "/api/share/"+token, nil, 0)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assertExpectationsMet(t, mock)
}

// TestResolveSharedContactInvalidTokens redeems garbage tokens and a session token that was
// never a share token. All must be answered with the same generic BAD REQUEST message and no
// database access.
func TestResolveSharedContactInvalidTokens(t *testing.T) {
	sessionToken, _ := auth.IssueSessionToken(testSecret, 7)
	for _, token := range []string{"garbage", "a.b.c", sessionToken} {
		db, mock := createMockObjects(t)
		defer db.Close()
		expectPreparedStatements(mock)

		recorder := runTest(db, "GET", "/api/share/"+token, nil, 0)
		body := decodeBody(t, recorder, http.StatusBadRequest)
		assert.Equal(t, "invalid or expired share link", body["message"])
		assertExpectationsMet(t, mock)
	}
}
