package handler

import (
	"context"
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/errors"
	"github.com/johnquangdev/transcript-intel/internal/adapter/dto/common"
	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	ucerrors "github.com/johnquangdev/transcript-intel/internal/usecase/errors"
	"github.com/johnquangdev/transcript-intel/pkg/ai"
)

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// parseUUIDParam reads a path parameter that must be a UUID
func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidArgument(name + " must be a valid UUID")
	}
	return id, nil
}

// bindAndValidate decodes the JSON body into req and runs struct validation
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.ErrInvalidPayload()
	}
	if err := c.Validate(req); err != nil {
		return errors.ErrInvalidArgument(err.Error())
	}
	return nil
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := common.SuccessResponse{
		Code:    status,
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}

	return c.JSON(status, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	appErr := toAppError(c, err)

	if logger != nil {
		fields := []zap.Field{
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.String("app_code", appErr.Code.String()),
			zap.Error(err),
		}
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.Error("http.response.error", fields...)
		} else {
			logger.Warn("http.response.error", fields...)
		}
	}

	info := ""
	if appErr.Raw != nil {
		info = appErr.Raw.Error()
	}

	return c.JSON(appErr.HTTPCode, common.ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Info:    info,
		Details: appErr.Details,
	})
}

// toAppError maps usecase and domain failures onto API errors. Errors that
// already are an AppError pass through unchanged.
func toAppError(c echo.Context, err error) errors.AppError {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stdErrors.Is(err, ucerrors.ErrInvalidInput):
		return errors.ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, ucerrors.ErrMalformedResponse):
		return errors.ErrMalformedTranscript(err)
	case stdErrors.Is(err, ucerrors.ErrNoSegments):
		return errors.ErrEmptyTranscript(c.Param("id"))
	case stdErrors.Is(err, ucerrors.ErrInvalidPattern),
		stdErrors.Is(err, ucerrors.ErrInvalidCaptureGroup):
		return errors.ErrInvalidPattern(err)
	case stdErrors.Is(err, entities.ErrProfileNotFound):
		return errors.ErrProfileNotFound(err)
	case stdErrors.Is(err, entities.ErrTranscriptNotFound):
		return errors.ErrTranscriptNotFound(c.Param("id"))
	case stdErrors.Is(err, ucerrors.ErrSameProfile),
		stdErrors.Is(err, ucerrors.ErrOrganizationMismatch):
		return errors.ErrProfileMergeConflict(err.Error())
	case stdErrors.Is(err, ai.ErrTranscriptNotReady):
		return errors.ErrTranscriptNotReady(err)
	case stdErrors.Is(err, ai.ErrTranscriptionFailed):
		return errors.ErrAITranscriptionFailed(err)
	case stdErrors.Is(err, ucerrors.ErrVendorFetch):
		return errors.ErrExternalAPIFailed("assemblyai", err)
	case stdErrors.Is(err, context.DeadlineExceeded):
		return errors.ErrProcessingFailed(err)
	}
	return errors.ErrInternal(err)
}
