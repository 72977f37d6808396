package service

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contact-hub/internal/auth"
	"gitlab.com/dirk.krummacker/contact-hub/internal/model"
)

// adminOnly rejects authenticated callers that are not administrators.
func adminOnly(c *gin.Context) {
	var users []model.User
	if err := selectUserWhereId.Select(&users, auth.OwnerId(c)); err != nil {
		log.Panicln(err)
	}
	if len(users) == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return
	}
	if !users[0].IsAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "admin access required"})
		return
	}
	c.Next()
}

// findUsers responds with all registered non-admin users, newest first. Password hashes are
// never part of the response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/admin/users -H "Authorization: Bearer $ADMIN_TOKEN"
func findUsers(c *gin.Context) {
	users := []model.User{}
	err := db.Select(&users, `
		SELECT * FROM users WHERE isadmin = FALSE ORDER BY created DESC, id DESC
	`)
	if err != nil {
		log.Panicln(err)
	}
	c.IndentedJSON(http.StatusOK, users)
}

// countUserContacts responds with the number of contacts one user owns.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/admin/users/7/count -H "Authorization: Bearer $ADMIN_TOKEN"
func countUserContacts(c *gin.Context) {
	userId, ok := parseIdParam(c, "userId")
	if !ok {
		return
	}
	var count int64
	if err := db.Get(&count, "SELECT COUNT(*) FROM contacts WHERE ownerid = ?", userId); err != nil {
		log.Panicln(err)
	}
	c.IndentedJSON(http.StatusOK, gin.H{"count": count})
}

// findUserMerges responds with one user's merge audit trail, newest first.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/admin/users/7/merges -H "Authorization: Bearer $ADMIN_TOKEN"
func findUserMerges(c *gin.Context) {
	userId, ok := parseIdParam(c, "userId")
	if !ok {
		return
	}
	records, err := audit.FindByUser(userId)
	if err != nil {
		log.Panicln(err)
	}
	c.IndentedJSON(http.StatusOK, records)
}
