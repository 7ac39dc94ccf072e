package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a queried row does not exist. Callers use it to
// tell a deleted-row race apart from a store failure.
var ErrNotFound = errors.New("record not found")

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
