package repository

import (
	"fmt"

	repo "app/internal/repository"
)

// DB起因の失敗はErrStorageUnavailableとして上に返す
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", repo.ErrStorageUnavailable, err)
}
