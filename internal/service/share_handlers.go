package service

import (
	"encoding/base64"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"gitlab.com/dirk.krummacker/contact-hub/internal/auth"
	"gitlab.com/dirk.krummacker/contact-hub/internal/model"
	"gitlab.com/dirk.krummacker/contact-hub/internal/share"
)

// qrImageSize is the edge length in pixels of rendered QR codes.
const qrImageSize = 256

// shareContactByID mints a share token for one of the caller's contacts and responds with the
// token and the public URL under which the contact can be viewed. The link stays valid for 30
// days and can be redeemed any number of times.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/contacts/56/share --request "POST" -H "Authorization: Bearer $TOKEN"
func shareContactByID(c *gin.Context) {
	token, url, ok := mintShareLink(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"shareToken": token, "shareUrl": url})
}

// shareContactQRByID is the QR variant of shareContactByID: the same share link, additionally
// rendered as a scannable PNG image returned as a data URL.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/contacts/56/qr -H "Authorization: Bearer $TOKEN"
func shareContactQRByID(c *gin.Context) {
	_, url, ok := mintShareLink(c)
	if !ok {
		return
	}
	png, err := qrcode.Encode(url, qrcode.Medium, qrImageSize)
	if err != nil {
		log.Panicln(err)
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	c.IndentedJSON(http.StatusOK, gin.H{"qrCode": dataURL, "shareUrl": url})
}

// mintShareLink checks that the contact in the URL exists and belongs to the caller, then issues
// a share token and builds the public URL. Both share endpoints run through here so that the
// minting logic exists only once.
func mintShareLink(c *gin.Context) (token string, url string, ok bool) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return "", "", false
	}
	var contacts []model.Contact
	if err := selectContactWhereIdAndOwner.Select(&contacts, id, auth.OwnerId(c)); err != nil {
		log.Panicln(err)
	}
	if len(contacts) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
		return "", "", false
	}
	token, err := share.Issue(jwtSecret, id)
	if err != nil {
		log.Panicln(err)
	}
	return token, baseURL + "/api/share/" + token, true
}

// resolveSharedContact is the public endpoint behind a share link. It verifies the token and
// responds with the redacted contact: no private note, no owner. All token failures look alike
// on purpose.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/share/eyJhbGciOi...
func resolveSharedContact(c *gin.Context) {
	contactId, err := share.Verify(jwtSecret, c.Param("token"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid or expired share link"})
		return
	}
	var contacts []model.Contact
	if err := selectContactWhereId.Select(&contacts, contactId); err != nil {
		log.Panicln(err)
	}
	if len(contacts) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, contacts[0].Redacted())
}
