package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	moderncsqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrDuplicateFile indicates a file with the same name is already stored.
var ErrDuplicateFile = errors.New("duplicate file name")

// isUniqueViolation reports whether err is a UNIQUE constraint failure from
// either supported driver. A primary CONSTRAINT code is accepted when the
// message names a UNIQUE constraint, for connections without extended codes.
func isUniqueViolation(err error) bool {
	var cgoErr sqlite3.Error
	if errors.As(err, &cgoErr) {
		if cgoErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return true
		}
		return cgoErr.Code == sqlite3.ErrConstraint && strings.Contains(cgoErr.Error(), uniqueFailed)
	}
	var pureErr *moderncsqlite.Error
	if errors.As(err, &pureErr) {
		switch pureErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		case sqlite3lib.SQLITE_CONSTRAINT:
			return strings.Contains(pureErr.Error(), uniqueFailed)
		}
	}
	return false
}

// uniqueFailed prefixes SQLite's UNIQUE violation message.
const uniqueFailed = "UNIQUE constraint failed"

// FileError reports why one file of a batch was not stored.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("store file %q: %v", e.Name, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
