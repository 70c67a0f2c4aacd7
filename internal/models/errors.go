package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes surfaced to clients.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeQuotaExceeded        = "QUOTA_EXCEEDED"
	CodeOriginalPostNotFound = "ORIGINAL_POST_NOT_FOUND"
	CodeAlreadyReposted      = "ALREADY_REPOSTED"
	CodeSelfRepost           = "SELF_REPOST"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeNotFound             = "NOT_FOUND"
	CodeInternal             = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so
// errors.Is(err, ErrQuotaExceeded) works for wrapped and re-created values.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// Domain errors returned by the post, feed and profile services.
var (
	ErrQuotaExceeded = &AppError{
		Code:    CodeQuotaExceeded,
		Message: "Daily post limit exceeded.",
	}
	ErrOriginalPostNotFound = &AppError{
		Code:    CodeOriginalPostNotFound,
		Message: "The post you are trying to repost does not exist.",
	}
	ErrAlreadyReposted = &AppError{
		Code:    CodeAlreadyReposted,
		Message: "You have already reposted this post.",
	}
	ErrSelfRepost = &AppError{
		Code:    CodeSelfRepost,
		Message: "You cannot repost your own post.",
	}
	ErrUserNotFound = &AppError{
		Code:    CodeUserNotFound,
		Message: "User not found.",
	}
	ErrNotFound = &AppError{
		Code:    CodeNotFound,
		Message: "Resource not found.",
	}
)

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewUserNotFoundError(id interface{}) *AppError {
	return &AppError{
		Code:    CodeUserNotFound,
		Message: fmt.Sprintf("User with ID %v not found", id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// IsClientError reports whether err is an expected, caller-correctable
// condition rather than a server fault.
func IsClientError(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code != CodeInternal && appErr.Code != ""
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		// Internal causes stay in the logs.
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
