// Package auditlog persists the append-only record of contact merges. It is
// separated from the merge computation so that writing the audit trail can
// be tested on its own.
package auditlog

import (
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contact-hub/internal/model"
)

// Store is an append-only log of contact merges. Records are never updated
// or deleted here; retention is somebody else's policy.
type Store interface {
	// Append writes one merge record within the given transaction and fills
	// in the record's assigned id.
	Append(tx *sqlx.Tx, record *model.MergeRecord) error

	// FindByUser returns all merge records of one user, newest first.
	FindByUser(userId int64) ([]model.MergeRecord, error)
}

// SQLStore implements Store on a relational database.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore creates a Store backed by the given database handle.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Append(tx *sqlx.Tx, record *model.MergeRecord) error {
	result, err := tx.NamedExec(`
		INSERT INTO mergelog (userid, mergedcontactid, sourceids, mergeddata)
		VALUES (:userid, :mergedcontactid, :sourceids, :mergeddata)
	`, record)
	if err != nil {
		return err
	}
	record.Id, err = result.LastInsertId()
	return err
}

func (s *SQLStore) FindByUser(userId int64) ([]model.MergeRecord, error) {
	records := []model.MergeRecord{}
	err := s.db.Select(&records, `
		SELECT * FROM mergelog WHERE userid = ? ORDER BY created DESC, id DESC
	`, userId)
	return records, err
}
