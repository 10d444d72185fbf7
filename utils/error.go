package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorKind classifies failures so handlers can map them to HTTP statuses.
type ErrorKind string

const (
	KindValidation         ErrorKind = "ValidationError"
	KindNotFound           ErrorKind = "NotFoundError"
	KindAuthorization      ErrorKind = "AuthorizationError"
	KindInvalidState       ErrorKind = "InvalidStateError"
	KindVehicleUnavailable ErrorKind = "VehicleUnavailableError"
	KindConflict           ErrorKind = "ConflictError"
	KindDependencyWrite    ErrorKind = "DependencyWriteError"
)

// AppError is a classified error carrying a client-safe message.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the kind to its HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindInvalidState, KindVehicleUnavailable:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func WrapAppError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// RespondError renders err as {"error": message}. Unclassified errors become a 500
// without leaking their text.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	if logger == nil {
		logger = GetLogger()
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		logger.Error("Unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
		return
	}

	status := appErr.StatusCode()
	fields := []zap.Field{zap.String("kind", string(appErr.Kind)), zap.Int("status", status)}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}
	if status >= http.StatusInternalServerError {
		logger.Error(appErr.Message, fields...)
	} else {
		logger.Warn(appErr.Message, fields...)
	}
	c.JSON(status, ErrorResponse{Error: appErr.Message})
}
