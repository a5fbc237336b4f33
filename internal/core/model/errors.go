package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's failure taxonomy. All mutation failures
// leave the store unmodified.
var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidMerge            = errors.New("invalid merge")
	ErrValidation              = errors.New("validation failed")
	ErrConflictAlreadyResolved = errors.New("conflict already resolved")
	ErrStaleVersion            = errors.New("stale version")
	ErrCyclicSequence          = errors.New("cyclic sequential graph")
)

func NotFoundError(kind, id string) error {
	return fmt.Errorf("%s '%s': %w", kind, id, ErrNotFound)
}

func InvalidMergeError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalidMerge)
}

func ValidationError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrValidation)
}

func ConflictAlreadyResolvedError(conflictID string, status ConflictStatus) error {
	return fmt.Errorf("conflict '%s' is %s: %w", conflictID, status, ErrConflictAlreadyResolved)
}

func StaleVersionError(documentID string, have, want int64) error {
	return fmt.Errorf("document '%s' at version %d, caller read %d: %w", documentID, want, have, ErrStaleVersion)
}

func CyclicSequenceError(conceptID string) error {
	return fmt.Errorf("sequential cycle through concept '%s': %w", conceptID, ErrCyclicSequence)
}
