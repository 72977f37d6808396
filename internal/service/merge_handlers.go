package service

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contact-hub/internal/auth"
	"gitlab.com/dirk.krummacker/contact-hub/internal/merge"
	"gitlab.com/dirk.krummacker/contact-hub/internal/model"
)

// mergeRequest is the body of a merge call. The order of the ids decides
// which contact wins a field when several sources have a value.
type mergeRequest struct {
	ContactIds []int64 `json:"contactIds"`
}

// mergeLocks serializes merges per owner. Without it two overlapping merge
// calls of the same user could both read a contact that the other one is
// about to delete.
var mergeLocks sync.Map

// lockForOwner returns the mutex guarding all merges of one user.
func lockForOwner(ownerId int64) *sync.Mutex {
	lock, _ := mergeLocks.LoadOrStore(ownerId, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// mergeContacts combines two or more of the caller's contacts into a single new one. For every
// scalar field the first non-empty value wins, scanning the sources in the order of the supplied
// id list; tags are unioned. The new contact is created, one audit record is appended, and the
// source contacts are deleted, all within one database transaction. If any supplied id does not
// exist or belongs to another user, nothing is written.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/contacts/merge --request "POST" --include --header "Content-Type: application/json" --header "Authorization: Bearer $TOKEN" --data '{"contactIds": [56, 57]}'
func mergeContacts(c *gin.Context) {
	owner := auth.OwnerId(c)
	var request mergeRequest
	if err := c.BindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	if len(request.ContactIds) < 2 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "at least 2 contacts required for merge"})
		return
	}
	seen := make(map[int64]bool)
	for _, id := range request.ContactIds {
		if seen[id] {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "duplicate contact ids"})
			return
		}
		seen[id] = true
	}

	lock := lockForOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	sources, ok := fetchMergeSources(owner, request.ContactIds)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "some contacts not found"})
		return
	}

	merged := merge.Combine(sources, owner)
	snapshot := model.Snapshot(merged)

	tx, err := db.Beginx()
	if err != nil {
		log.Panicln(err)
	}
	merged.Id, err = writeMerge(tx, owner, merged, snapshot, request.ContactIds)
	if err != nil {
		tx.Rollback()
		log.Panicln(err)
	}
	if err := tx.Commit(); err != nil {
		log.Panicln(err)
	}
	c.IndentedJSON(http.StatusCreated, merged)
}

// fetchMergeSources loads the caller's contacts for the given ids and returns them ordered
// exactly like the id list. It reports failure if any id is missing or owned by someone else.
func fetchMergeSources(owner int64, contactIds []int64) ([]model.Contact, bool) {
	query, args, err := sqlx.In(`
		SELECT * FROM contacts WHERE ownerid = ? AND id IN (?)
	`, owner, contactIds)
	if err != nil {
		log.Panicln(err)
	}
	var fetched []model.Contact
	if err := db.Select(&fetched, query, args...); err != nil {
		log.Panicln(err)
	}
	if len(fetched) != len(contactIds) {
		return nil, false
	}
	byId := make(map[int64]model.Contact, len(fetched))
	for _, contact := range fetched {
		byId[contact.Id] = contact
	}
	sources := make([]model.Contact, 0, len(contactIds))
	for _, id := range contactIds {
		contact, found := byId[id]
		if !found {
			return nil, false
		}
		sources = append(sources, contact)
	}
	return sources, true
}

// writeMerge performs the three merge writes within the given transaction: insert the merged
// contact, append the audit record, delete the sources. It returns the new contact's id.
func writeMerge(tx *sqlx.Tx, owner int64, merged model.Contact, snapshot model.Snapshot, sourceIds []int64) (int64, error) {
	result, err := tx.NamedExec(insertContactSQL, &merged)
	if err != nil {
		return 0, err
	}
	mergedId, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	record := model.MergeRecord{
		UserId:          owner,
		MergedContactId: mergedId,
		SourceIds:       sourceIds,
		MergedData:      snapshot,
	}
	if err := audit.Append(tx, &record); err != nil {
		return 0, err
	}

	query, args, err := sqlx.In(`
		DELETE FROM contacts WHERE ownerid = ? AND id IN (?)
	`, owner, sourceIds)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return 0, err
	}
	return mergedId, nil
}
