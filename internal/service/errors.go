package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/pkg/dberrors"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// dashboardCachePattern matches every cached dashboard payload.
const dashboardCachePattern = "dash:*"

type txRunner interface {
	WithinTx(ctx context.Context, fn func(tx sqlx.ExtContext) error) error
}

// storageError maps repository failures onto API errors. notFound is the message used for
// sql.ErrNoRows and action completes "failed to ..." for unexpected failures.
func storageError(err error, notFound, action string) error {
	var appErr *appErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	case dberrors.IsUniqueViolation(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "record already exists")
	case dberrors.IsForeignKeyViolation(err):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "referenced record does not exist")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+action)
	}
}

func internalError(err error, action string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+action)
}

func invalidPayload(err error) error {
	return appErrors.Validation(err, "invalid payload")
}
