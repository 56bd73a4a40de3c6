package service

import (
	"errors"

	"gorm.io/gorm"
)

// Service layer errors for better error handling
var (
	ErrNotFound       = errors.New("record not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrConflict       = errors.New("conflict with current state")
)

// dbErr maps gorm lookup misses onto the service taxonomy.
func dbErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
