package store

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate is returned when inserting a record that already exists
	ErrDuplicate = errors.New("record already exists")
	// ErrMissing is returned when updating a record that does not exist
	ErrMissing = errors.New("record does not exist")
)

func errDuplicate(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrDuplicate, kind, id)
}

func errMissing(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrMissing, kind, id)
}
