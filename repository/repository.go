// Package repository holds the gorm-backed data access for every resource.
// Each repository is an interface plus a postgres implementation; services
// depend only on the interfaces.
package repository

import (
	"errors"

	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"gorm.io/gorm"
)

// Page is a paginated result
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

// notFound maps gorm.ErrRecordNotFound to apperror.ErrNotFound and passes other errors through
func notFound(err error, entity string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(entity, id)
	}
	return err
}

// duplicate maps gorm.ErrDuplicatedKey to apperror.ErrConflict
func duplicate(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict("%s", what)
	}
	return err
}

// exists runs a COUNT over query and reports whether any row matched
func exists(query *gorm.DB) (bool, error) {
	var count int64
	if err := query.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
