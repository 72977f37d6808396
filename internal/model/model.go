package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Contact is the data structure for a person in a user's address book. Every
// contact belongs to exactly one user, identified by OwnerId. First and last
// name are mandatory, everything else is optional.
type Contact struct {
	Id             int64     `json:"id"                       db:"id"`
	FirstName      string    `json:"firstName"                db:"firstname"      binding:"required"`
	LastName       string    `json:"lastName"                 db:"lastname"       binding:"required"`
	Nickname       string    `json:"nickname,omitempty"       db:"nickname"`
	PrimaryPhone   string    `json:"primaryPhone,omitempty"   db:"primaryphone"`
	SecondaryPhone string    `json:"secondaryPhone,omitempty" db:"secondaryphone"`
	Email          string    `json:"email,omitempty"          db:"email"`
	Company        string    `json:"company,omitempty"        db:"company"`
	JobTitle       string    `json:"jobTitle,omitempty"       db:"jobtitle"`
	Description    string    `json:"description,omitempty"    db:"description"`
	PrivateNote    string    `json:"privateNote,omitempty"    db:"privatenote"`
	Tags           TagList   `json:"tags"                     db:"tags"`
	AvatarUrl      string    `json:"avatarUrl,omitempty"      db:"avatarurl"`
	OwnerId        int64     `json:"ownerId,omitempty"        db:"ownerid"`
	Created        time.Time `json:"created"                  db:"created"`
}

// Redacted returns the contact as it may be shown to the holder of a share
// token: without the private note and without the owning user.
func (c Contact) Redacted() Contact {
	c.PrivateNote = ""
	c.OwnerId = 0
	return c
}

// ContactUpdate carries a partial update of a contact. All fields are
// pointers so that absent fields can be told apart from fields being set to
// an empty value.
type ContactUpdate struct {
	FirstName      *string  `json:"firstName"`
	LastName       *string  `json:"lastName"`
	Nickname       *string  `json:"nickname"`
	PrimaryPhone   *string  `json:"primaryPhone"`
	SecondaryPhone *string  `json:"secondaryPhone"`
	Email          *string  `json:"email"`
	Company        *string  `json:"company"`
	JobTitle       *string  `json:"jobTitle"`
	Description    *string  `json:"description"`
	PrivateNote    *string  `json:"privateNote"`
	Tags           *TagList `json:"tags"`
	AvatarUrl      *string  `json:"avatarUrl"`
}

// User is a registered account. The password column holds the bcrypt hash,
// never the clear text, and is excluded from all JSON responses.
type User struct {
	Id        int64     `json:"id"        db:"id"`
	FirstName string    `json:"firstName" db:"firstname"`
	LastName  string    `json:"lastName"  db:"lastname"`
	Email     string    `json:"email"     db:"email"`
	Password  string    `json:"-"         db:"password"`
	IsAdmin   bool      `json:"isAdmin"   db:"isadmin"`
	Created   time.Time `json:"created"   db:"created"`
}

// MergeRecord is one entry of the append-only merge audit log. SourceIds
// keeps the contact ids exactly in the order the caller supplied them, and
// MergedData is a snapshot of the merged field values at merge time.
type MergeRecord struct {
	Id              int64     `json:"id"               db:"id"`
	UserId          int64     `json:"userId"           db:"userid"`
	MergedContactId int64     `json:"mergedContactId"  db:"mergedcontactid"`
	SourceIds       IdList    `json:"sourceContactIds" db:"sourceids"`
	MergedData      Snapshot  `json:"mergedData"       db:"mergeddata"`
	Created         time.Time `json:"created"          db:"created"`
}

// TagList is a set of tags stored as a JSON string array in a single text
// column.
type TagList []string

// Value implements driver.Valuer by encoding the tags as JSON. A nil list is
// stored as an empty array so that the column never holds SQL NULL.
func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		t = TagList{}
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for reading the JSON column back.
func (t *TagList) Scan(src interface{}) error {
	return scanJSON(t, src)
}

// IdList is a list of record ids stored as a JSON number array in a single
// text column.
type IdList []int64

// Value implements driver.Valuer by encoding the ids as JSON.
func (l IdList) Value() (driver.Value, error) {
	if l == nil {
		l = IdList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for reading the JSON column back.
func (l *IdList) Scan(src interface{}) error {
	return scanJSON(l, src)
}

// Snapshot stores a full contact value as a JSON document in a single text
// column. It is used by the merge audit log.
type Snapshot Contact

// Value implements driver.Valuer.
func (s Snapshot) Value() (driver.Value, error) {
	return json.Marshal(Contact(s))
}

// Scan implements sql.Scanner.
func (s *Snapshot) Scan(src interface{}) error {
	return scanJSON((*Contact)(s), src)
}

// scanJSON decodes a JSON column value that the driver hands us as either a
// byte slice or a string.
func scanJSON(dest interface{}, src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
}
