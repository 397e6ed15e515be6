package usecase

import (
	"errors"
	"fmt"
	"net/http"

	repo "app/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// repository層のエラーをそのままHTTPステータスへ落とす共通変換。
// 404は「見つからない」、503はストレージ障害
func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrStorageUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
