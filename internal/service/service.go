package service

import (
	"errors"
	"storefront-api/internal/apperror"

	"gorm.io/gorm"
)

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound error and leaves any
// other error as is.
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(format, args...)
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
