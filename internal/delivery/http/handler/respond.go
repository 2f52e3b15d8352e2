package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicfix/internal/logger"
	"civicfix/internal/middleware"
	appErrors "civicfix/pkg/errors"
	"civicfix/pkg/utils"
)

// statusForCode maps the stable error kinds to HTTP statuses.
var statusForCode = map[string]int{
	appErrors.CodeValidation:        http.StatusBadRequest,
	appErrors.CodeUnauthenticated:   http.StatusUnauthorized,
	appErrors.CodeForbidden:         http.StatusForbidden,
	appErrors.CodeNotFound:          http.StatusNotFound,
	appErrors.CodeConflict:          http.StatusConflict,
	appErrors.CodeIllegalTransition: http.StatusUnprocessableEntity,
	appErrors.CodeInvalidCoordinate: http.StatusBadRequest,
	appErrors.CodeUnavailable:       http.StatusServiceUnavailable,
}

// respondWithError translates service errors to responses carrying a stable
// machine-readable kind. Anything unrecognized is logged with its request id
// and surfaced as an opaque 500.
func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		status, ok := statusForCode[appErr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		utils.ErrorResponseWithCode(c, status, appErr.Code, appErr.Message)
		return
	}

	switch {
	case errors.Is(err, appErrors.ErrInvalidCredentials),
		errors.Is(err, appErrors.ErrInvalidToken),
		errors.Is(err, appErrors.ErrUnauthenticated):
		utils.ErrorResponseWithCode(c, http.StatusUnauthorized,
			appErrors.CodeUnauthenticated, err.Error())
	case errors.Is(err, appErrors.ErrInsufficientPermissions):
		utils.ErrorResponseWithCode(c, http.StatusForbidden,
			appErrors.CodeForbidden, err.Error())
	case errors.Is(err, appErrors.ErrUserNotFound):
		utils.ErrorResponseWithCode(c, http.StatusNotFound,
			appErrors.CodeNotFound, err.Error())
	case errors.Is(err, appErrors.ErrUserAlreadyExists):
		utils.ErrorResponseWithCode(c, http.StatusConflict,
			appErrors.CodeConflict, err.Error())
	default:
		requestID := middleware.GetRequestID(c)
		logger.Error("Internal server error",
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponseWithCode(c, http.StatusInternalServerError,
			appErrors.CodeUnavailable, "Internal server error")
	}
}
