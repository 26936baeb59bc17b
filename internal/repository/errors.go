package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrRecordNotFound is returned when a lookup matches no row.
var ErrRecordNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}
