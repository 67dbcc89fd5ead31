package repository

import "errors"

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a compare-and-swap write matched zero rows: the
	// record moved on since the caller read it.
	ErrConflict = errors.New("stale status, record was updated concurrently")
	// ErrIllegalTransition is the store-level invariant enforcer rejecting a
	// (from, to) pair absent from the transition table, whoever the caller.
	ErrIllegalTransition = errors.New("illegal status transition")
)
