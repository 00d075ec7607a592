package service

import (
	"github.com/strawhatacademy/academy-api/pkg/database"
	appErrors "github.com/strawhatacademy/academy-api/pkg/errors"
)

// storeError maps a repository failure to a typed error. Connection-level
// failures surface as CONNECTION_UNAVAILABLE so callers never mistake an
// unreachable store for a missing row.
func storeError(err error, message string) error {
	if database.IsUnavailable(err) {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, appErrors.ErrUnavailable.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
