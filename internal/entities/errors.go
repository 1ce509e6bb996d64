package entities

import "github.com/pkg/errors"

var (
	// ErrStaleObject is returned when a versioned row was changed by someone else.
	ErrStaleObject = errors.New("attempted to update a stale object")
	// ErrIntegrity marks remote records that lack fields required to proceed.
	ErrIntegrity = errors.New("data integrity violation")
	// ErrStoreBusy is returned when the database stayed locked by another writer for too long.
	ErrStoreBusy = errors.New("database is busy")
)
