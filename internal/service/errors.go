package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means the actor may not issue this command. Never
	// retried automatically.
	ErrUnauthorized = errors.New("actor is not allowed to issue this command")
	// ErrNotFound means the rental record does not exist.
	ErrNotFound = errors.New("rental not found")
	// ErrConflict means the compare-and-swap lost a race: the record moved
	// since it was read. Callers re-read and decide whether to retry.
	ErrConflict = errors.New("rental was updated concurrently, refresh and retry")
	// ErrGuardFailed is the sentinel all guard failures match via errors.Is.
	ErrGuardFailed = errors.New("transition precondition not met")
	// ErrUnknownCommand means the command is not in the closed set.
	ErrUnknownCommand = errors.New("unknown command")
)

// GuardError reports which precondition blocked a transition so the caller
// can resolve it and retry.
type GuardError struct {
	Command   string
	Condition string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("guard failed for %s: %s", e.Command, e.Condition)
}

func (e *GuardError) Is(target error) bool {
	return target == ErrGuardFailed
}

func guardFailed(cmd, condition string) error {
	return &GuardError{Command: cmd, Condition: condition}
}
