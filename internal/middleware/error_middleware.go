package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// HandleAPIError maps application errors to HTTP responses. A CustomError
// contributes its message and structured details; the wrapped sentinel
// decides the status code.
func HandleAPIError(c *gin.Context, err error) {
	code, errorCode, message := classify(err)

	detail := dto.NewErrorDetail(errorCode, message)

	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		if custom.Message != "" {
			detail.Message = custom.Message
		}
		if custom.Details != nil {
			detail = detail.WithDetails(custom.Details)
		}
	}

	c.JSON(code, dto.APIResponse{
		Error:     detail,
		Timestamp: time.Now(),
	})
}

func classify(err error) (int, dto.ErrorCode, string) {
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.ErrorCodeForbidden, "Account is disabled"
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"
	case errors.Is(err, apperrors.ErrResourceNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrStudentNotFound),
		errors.Is(err, apperrors.ErrThesisNotFound),
		errors.Is(err, apperrors.ErrIterationNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"
	case errors.Is(err, apperrors.ErrInvalidState):
		return http.StatusConflict, dto.ErrorCodeInvalidState, "Operation not permitted in current state"
	case errors.Is(err, apperrors.ErrEmailAlreadyExists),
		errors.Is(err, apperrors.ErrStudentNumberAlreadyExists),
		errors.Is(err, apperrors.ErrThesisAlreadyExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorCodeConflict, "The resource was modified concurrently, retry"
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"
	}
}
