package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds a SELECT ... FOR UPDATE row lock on dialects that support it.
// SQLite has no FOR UPDATE syntax; its single-writer transactions (the test
// harness opens connections with _txlock=immediate) give the same ordering.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// isDuplicate reports whether err is a unique-constraint violation. Requires
// gorm.Config{TranslateError: true} on the session.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// withRetry runs op, retrying exactly once when the failure is a
// TransientStoreConflict (a race lost to another committer). Every other
// outcome is returned as-is.
func withRetry(op func() error) error {
	err := op()
	if err != nil && KindOf(err) == KindTransientStoreConflict {
		err = op()
	}
	return err
}
