package service

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contact-hub/internal/auth"
	"gitlab.com/dirk.krummacker/contact-hub/internal/model"
)

// findContacts responds with the list of the caller's contacts as JSON. The list never contains
// contacts of other users.
//
// The URL parameters 'firstname' and 'lastname' are interpreted as the beginning of the first
// name or last name of the contact.
//
// The URL parameter 'limit' specifies how many contacts matching the search criteria are
// returned. The URL parameter 'offset' specifies how many items from the sorted list of results
// are skipped in the beginning. Together with the 'limit' parameter, one can implement search
// result paging.
//
// The URL parameter 'orderby' specifies the contact property by which the results shall be
// sorted. Valid values are 'id', 'firstname', 'lastname', 'email', 'company', and 'created'. If
// this URL parameter is not specified, the contacts will be sorted by creation time, newest
// first. If the URL parameter 'ascending' is set to 'false' then the sort order is reversed.
//
// REST API calls:
//
//	> curl "http://localhost:8080/api/contacts" -H "Authorization: Bearer $TOKEN"
//	> curl "http://localhost:8080/api/contacts?firstname=Ji" -H "Authorization: Bearer $TOKEN"
//	> curl "http://localhost:8080/api/contacts?limit=20&offset=60" -H "Authorization: Bearer $TOKEN"
//	> curl "http://localhost:8080/api/contacts?orderby=lastname&ascending=false" -H "Authorization: Bearer $TOKEN"
func findContacts(c *gin.Context) {
	owner := auth.OwnerId(c)
	first := c.Query("firstname")
	last := c.Query("lastname")
	limit, offset, successLimitAndOffset := parseLimitAndOffset(c)
	if !successLimitAndOffset {
		return
	}
	orderby, ascending, successOrderbyAndAscending := parseOrderbyAndAscending(c)
	if !successOrderbyAndAscending {
		return
	}
	contacts := []model.Contact{}
	var err error
	if first != "" || last != "" {
		sql := fmt.Sprintf(`
			SELECT *
			FROM contacts
			WHERE ownerid = ?
				AND firstname LIKE ?
				AND lastname LIKE ?
			ORDER BY %s %s
			LIMIT ?
			OFFSET ?`, orderby, ascending)
		err = db.Select(&contacts, sql, owner, first+"%", last+"%", limit, offset)
	} else {
		sql := fmt.Sprintf(`
			SELECT *
			FROM contacts
			WHERE ownerid = ?
			ORDER BY %s %s
			LIMIT ?
			OFFSET ?`, orderby, ascending)
		err = db.Select(&contacts, sql, owner, limit, offset)
	}
	if err != nil {
		log.Panicln(err)
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

// parseLimitAndOffset inspects the URL parameters and determines values for limit and offset of
// the result set.
func parseLimitAndOffset(c *gin.Context) (limit string, offset string, success bool) {
	limit = c.Query("limit")
	offset = c.Query("offset")
	if limit != "" {
		limitAsInt, errConv := strconv.Atoi(limit)
		if errConv != nil || limitAsInt < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid limit parameter"})
			return "", "", false
		}
	} else {
		limit = strconv.Itoa(maxInt)
	}
	if offset != "" {
		offsetAsInt, errConv := strconv.Atoi(offset)
		if errConv != nil || offsetAsInt < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid offset parameter"})
			return "", "", false
		}
	} else {
		offset = "0"
	}
	return limit, offset, true
}

// parseOrderbyAndAscending inspects the URL parameters and determines values for the orderby and
// ascending values of the result set. The default is newest first.
func parseOrderbyAndAscending(c *gin.Context) (orderby string, ascending string, success bool) {
	orderby = c.Query("orderby")
	ascendingAsString := c.Query("ascending")
	if orderby == "" {
		orderby = "created"
		if ascendingAsString == "" {
			ascendingAsString = "false"
		}
	}
	if !contains(allowedOrderby, orderby) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid orderby parameter"})
		return "", "", false
	}
	if ascendingAsString == "" {
		ascendingAsString = "true"
	}
	if !contains(allowedAscending, ascendingAsString) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid ascending parameter"})
		return orderby, "", false
	}
	if ascendingAsString == "true" {
		ascending = "ASC"
	} else {
		ascending = "DESC"
	}
	return orderby, ascending, true
}

// createContact inserts the contact specified in the request's JSON into the database, owned by
// the caller regardless of any ownerId in the body. It responds with the full contact data
// including the newly assigned id.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/contacts --request "POST" --include --header "Content-Type: application/json" --header "Authorization: Bearer $TOKEN" --data '{"firstName": "Hans", "lastName": "Wurst", "primaryPhone": "0815", "tags": ["work"]}'
func createContact(c *gin.Context) {
	var newContact model.Contact
	if err := c.BindJSON(&newContact); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "firstName and lastName are required"})
		return
	}
	newContact.Id = 0
	newContact.OwnerId = auth.OwnerId(c)
	if newContact.Tags == nil {
		newContact.Tags = model.TagList{}
	}
	result, err := insertContact.Exec(&newContact)
	if err != nil {
		log.Panicln(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		log.Panicln(err)
	}
	newContact.Id = id
	c.IndentedJSON(http.StatusCreated, newContact)
}

// findContactByID locates the caller's contact whose ID value matches the id parameter of the
// request URL, then returns that contact as a response. Contacts of other users are reported as
// not found.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/contacts/56 -H "Authorization: Bearer $TOKEN"
func findContactByID(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}

	var contacts []model.Contact
	err := selectContactWhereIdAndOwner.Select(&contacts, id, auth.OwnerId(c))
	if err != nil {
		log.Panicln(err)
	}
	if len(contacts) == 0 {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
	} else {
		c.IndentedJSON(http.StatusOK, contacts[0])
	}
}

// updateContactByID updates the caller's contact whose ID value matches the id parameter of the
// request URL, updates the values specified in the JSON (and only those), and finally responds
// with the new version of the contact.
//
// Example REST API calls:
//
//	> curl http://localhost:8080/api/contacts/56 --request "PUT" --include --header "Content-Type: application/json" --header "Authorization: Bearer $TOKEN" --data '{"primaryPhone": "81970"}'
//	> curl http://localhost:8080/api/contacts/56 --request "PUT" --include --header "Content-Type: application/json" --header "Authorization: Bearer $TOKEN" --data '{"tags": ["family", "tennis"]}'
func updateContactByID(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}

	var submitted model.ContactUpdate
	if errBind := c.BindJSON(&submitted); errBind != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}

	var args []interface{}
	sql := "UPDATE contacts SET "
	appendArg := func(column string, value interface{}) {
		args = append(args, value)
		sql += column + "=?, "
	}
	if submitted.FirstName != nil {
		appendArg("firstname", submitted.FirstName)
	}
	if submitted.LastName != nil {
		appendArg("lastname", submitted.LastName)
	}
	if submitted.Nickname != nil {
		appendArg("nickname", submitted.Nickname)
	}
	if submitted.PrimaryPhone != nil {
		appendArg("primaryphone", submitted.PrimaryPhone)
	}
	if submitted.SecondaryPhone != nil {
		appendArg("secondaryphone", submitted.SecondaryPhone)
	}
	if submitted.Email != nil {
		appendArg("email", submitted.Email)
	}
	if submitted.Company != nil {
		appendArg("company", submitted.Company)
	}
	if submitted.JobTitle != nil {
		appendArg("jobtitle", submitted.JobTitle)
	}
	if submitted.Description != nil {
		appendArg("description", submitted.Description)
	}
	if submitted.PrivateNote != nil {
		appendArg("privatenote", submitted.PrivateNote)
	}
	if submitted.Tags != nil {
		appendArg("tags", *submitted.Tags)
	}
	if submitted.AvatarUrl != nil {
		appendArg("avatarurl", submitted.AvatarUrl)
	}

	// It only makes sense to continue if we have at least one value to update.
	if len(args) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "no values to be updated"})
		return
	}

	sql = sql[:len(sql)-2]
	sql += " WHERE id=? AND ownerid=?"
	args = append(args, id, auth.OwnerId(c))
	result := db.MustExec(sql, args...)
	rowsAffected, errRows := result.RowsAffected()
	if errRows != nil {
		log.Panicln(errRows)
	}
	if rowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
		return
	}

	// In the HTTP response, return the full contact after the update.
	var contacts []model.Contact
	errSelect := selectContactWhereIdAndOwner.Select(&contacts, id, auth.OwnerId(c))
	if errSelect != nil {
		log.Panicln(errSelect)
	}
	if len(contacts) == 0 {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, contacts[0])
}

// deleteContactByID deletes the caller's contact whose ID value matches the id parameter of the
// request URL from the database.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/contacts/56 --request "DELETE" -H "Authorization: Bearer $TOKEN"
func deleteContactByID(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}

	result, err := deleteContactWhereIdAndOwner.Exec(id, auth.OwnerId(c))
	if err != nil {
		log.Panicln(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Panicln(err)
	}
	if rowsAffected == 1 {
		c.IndentedJSON(http.StatusOK, gin.H{"message": "contact deleted"})
	} else {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
	}
}

// sendContactSMS would text the contact's details to a phone number. There is no SMS provider
// wired up, so the endpoint reports the service as unavailable.
func sendContactSMS(c *gin.Context) {
	c.IndentedJSON(http.StatusServiceUnavailable, gin.H{"message": "SMS service not available"})
}

// parseIdParam reads a numeric id from the named URL parameter. Non-numeric values are answered
// with NOT FOUND before we reach out to the database.
func parseIdParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return 0, false
	}
	return id, true
}
