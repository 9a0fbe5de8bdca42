package api

import (
	"errors"
	"net/http"

	"team-dashboard/backend/internal/service"
	apperrors "team-dashboard/backend/pkg/errors"
	"team-dashboard/backend/pkg/resilience"
	"team-dashboard/backend/pkg/storage"

	"github.com/gin-gonic/gin"
)

// toAppError maps domain errors to their HTTP form
func toAppError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, service.ErrIdentityRequired):
		return apperrors.NewPreconditionError("IDENTITY_REQUIRED", "请先选择身份").Wrap(err)
	case errors.Is(err, service.ErrEmptyMessage):
		return apperrors.NewBadRequestError("EMPTY_MESSAGE", err.Error()).Wrap(err)
	case errors.Is(err, service.ErrNoFiles):
		return apperrors.NewBadRequestError("NO_FILES", err.Error()).Wrap(err)
	case errors.Is(err, service.ErrResourceNotFound):
		return apperrors.NewNotFoundError("RESOURCE_NOT_FOUND", err.Error()).Wrap(err)
	case errors.Is(err, service.ErrInvalidDataURI):
		return apperrors.NewError(http.StatusUnprocessableEntity, "INVALID_DATA_URI", err.Error()).Wrap(err)
	case errors.Is(err, service.ErrFileTooLarge):
		return apperrors.NewError(http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error()).Wrap(err)
	case errors.As(err, &tooLarge):
		return apperrors.NewError(http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "Request body is too large").Wrap(err)
	case errors.Is(err, storage.ErrMalformedState):
		return apperrors.NewInternalServerError("MALFORMED_STATE", err.Error()).Wrap(err)
	case errors.Is(err, resilience.ErrCircuitOpen):
		return apperrors.NewServiceUnavailableError("STORAGE_UNAVAILABLE", "Storage is temporarily unavailable").Wrap(err)
	}
	return err
}

func abortWithError(ctx *gin.Context, err error) {
	ctx.Error(toAppError(err))
	ctx.Abort()
}
