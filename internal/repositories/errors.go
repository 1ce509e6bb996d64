package repositories

import (
	"errors"

	gosqlite "github.com/glebarez/go-sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// isBusy reports whether sqlite gave up waiting for a lock held by another connection.
func isBusy(err error) bool {
	var sqliteErr *gosqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	// extended result codes keep the primary code in the low byte
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}
