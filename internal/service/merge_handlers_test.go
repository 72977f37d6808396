package service

import (
	"net/http"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// TestMergeContacts merges two contacts where the second one fills the gaps of the first. It
// expects the merged contact to be created, one audit record appended, and the sources deleted,
// all within one transaction.
func TestMergeContacts(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	rows := newContactRows(mock)
	addContact(rows, 1, 7, "Jo", "", "", `["x"]`)
	addContact(rows, 2, 7, "", "Lee", "", `["y"]`)
	mock.ExpectQuery("SELECT \\* FROM contacts WHERE ownerid = \\? AND id IN").
		WithArgs(int64(7), int64(1), int64(2)).
		WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO contacts").
		WithArgs("Jo", "Lee", "", "", "", "", "", "", "", "", []byte(`["x","y"]`), "", int64(7)).
		WillReturnResult(sqlmock.NewResult(99, 1))
	mock.ExpectExec("INSERT INTO mergelog").
		WithArgs(int64(7), int64(99), []byte("[1,2]"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("DELETE FROM contacts WHERE ownerid = \\? AND id IN").
		WithArgs(int64(7), int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(-1, 2))
	mock.ExpectCommit()

	recorder := runTest(db, "POST", "/api/contacts/merge", strings.NewReader(`
		{
			"contactIds": [1, 2]
		}
	`), 7)
	body := decodeBody(t, recorder, http.StatusCreated)
	assert.Equal(t, 99.0, body["id"])
	assert.Equal(t, "Jo", body["firstName"])
	assert.Equal(t, "Lee", body["lastName"])
	assert.ElementsMatch(t, []interface{}{"x", "y"}, body["tags"])
	assert.Equal(t, 7.0, body["ownerId"])
	assertExpectationsMet(t, mock)
}

// TestMergeContactsInputOrderWins merges two contacts in the reverse of their database order.
// The field values of the first id in the request must win, regardless of fetch order.
func TestMergeContactsInputOrderWins(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	// The database returns the rows in id order, the request asks for [2, 1].
	rows := newContactRows(mock)
	addContact(rows, 1, 7, "Jo", "Smith", "", `[]`)
	addContact(rows, 2, 7, "Johanna", "", "", `[]`)
	mock.ExpectQuery("SELECT \\* FROM contacts WHERE ownerid = \\? AND id IN").
		WithArgs(int64(7), int64(2), int64(1)).
		WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO contacts").
		WithArgs("Johanna", "Smith", "", "", "", "", "", "", "", "", []byte("[]"), "", int64(7)).
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectExec("INSERT INTO mergelog").
		WithArgs(int64(7), int64(100), []byte("[2,1]"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(6, 1))
	mock.ExpectExec("DELETE FROM contacts WHERE ownerid = \\? AND id IN").
		WithArgs(int64(7), int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(-1, 2))
	mock.ExpectCommit()

	recorder := runTest(db, "POST", "/api/contacts/merge", strings.NewReader(`
		{
			"contactIds": [2, 1]
		}
	`), 7)
	body := decodeBody(t, recorder, http.StatusCreated)
	assert.Equal(t, "Johanna", body["firstName"])
	assert.Equal(t, "Smith", body["lastName"])
	assertExpectationsMet(t, mock)
}

// TestMergeContactsTooFewIds executes merge requests with zero or one id. It expects BAD REQUEST
// answers and zero database writes.
func TestMergeContactsTooFewIds(t *testing.T) {
	invalidRequestBodies := []string{
		`{"contactIds": []}`,
		`{"contactIds": [1]}`,
		`{}`,
		"not JSON",
	}
	for _, body := range invalidRequestBodies {
		db, mock := createMockObjects(t)
		defer db.Close()
		expectPreparedStatements(mock) // we expect that the call will fail before the SQL statements

		recorder := runTest(db, "POST", "/api/contacts/merge", strings.NewReader(body), 7)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "request body: "+body)
		assertExpectationsMet(t, mock)
	}
}

// TestMergeContactsDuplicateIds executes a merge request that names the same contact twice. It
// expects a BAD REQUEST answer and zero database writes.
func TestMergeContactsDuplicateIds(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	recorder := runTest(db, "POST", "/api/contacts/merge", strings.NewReader(`
		{
			"contactIds": [1, 1]
		}
	`), 7)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assertExpectationsMet(t, mock)
}

// TestMergeContactsNotFound executes a merge where one id is missing or owned by another user.
// It expects a NOT FOUND answer and, crucially, no insert, no audit record, and no delete.
func TestMergeContactsNotFound(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	rows := newContactRows(mock)
	addContact(rows, 1, 7, "Jo", "", "", `["x"]`)
	mock.ExpectQuery("SELECT \\* FROM contacts WHERE ownerid = \\? AND id IN").
		WithArgs(int64(7), int64(1), int64(2)).
		WillReturnRows(rows)

	recorder := runTest(db, "POST", "/api/contacts/merge", strings.NewReader(`
		{
			"contactIds": [1, 2]
		}
	`), 7)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assertExpectationsMet(t, mock)
}
