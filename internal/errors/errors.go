// Package errors defines the service error taxonomy shared by handlers,
// middleware and services. Every user-visible failure is a ServiceError with
// a stable machine-readable code and an HTTP status.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error class.
type Code string

const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeAuthRequired       Code = "AUTH_REQUIRED"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeUserNotFound       Code = "USER_NOT_FOUND"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeDuplicateEmail     Code = "DUPLICATE_EMAIL"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAnalysisFailed     Code = "ANALYSIS_FAILED"
	CodeInternal           Code = "INTERNAL"
)

// ServiceError carries a coded, HTTP-mappable failure. The wrapped cause is
// for logs only and never serialized to clients.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	cause      error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.cause }

// WithDetails attaches a key/value detail and returns the error.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(code Code, message string, status int, cause error) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status, cause: cause}
}

// InvalidInput marks a user-correctable request problem.
func InvalidInput(message string) *ServiceError {
	return newError(CodeInvalidInput, message, http.StatusBadRequest, nil)
}

// AuthRequired marks a request with no credentials at all.
func AuthRequired() *ServiceError {
	return newError(CodeAuthRequired, "authentication required", http.StatusUnauthorized, nil)
}

// InvalidToken marks a structurally bad or wrongly signed token.
func InvalidToken(cause error) *ServiceError {
	return newError(CodeInvalidToken, "invalid token", http.StatusUnauthorized, cause)
}

// TokenExpired marks a token past its expiry instant.
func TokenExpired() *ServiceError {
	return newError(CodeTokenExpired, "token expired", http.StatusUnauthorized, nil)
}

// UserNotFound marks a valid token whose subject no longer resolves.
func UserNotFound() *ServiceError {
	return newError(CodeUserNotFound, "user not found", http.StatusUnauthorized, nil)
}

// InvalidCredentials is the single generic signin failure. It deliberately
// does not distinguish unknown email from wrong password.
func InvalidCredentials() *ServiceError {
	return newError(CodeInvalidCredentials, "invalid credentials", http.StatusUnauthorized, nil)
}

// DuplicateEmail marks a signup against an already registered email.
func DuplicateEmail() *ServiceError {
	return newError(CodeDuplicateEmail, "user already exists", http.StatusBadRequest, nil)
}

// NotFound covers both absent resources and resources owned by another user;
// the response is identical in both cases.
func NotFound(resource string) *ServiceError {
	return newError(CodeNotFound, resource+" not found", http.StatusNotFound, nil)
}

// AnalysisFailed marks a collaborator error or misconfiguration.
func AnalysisFailed(cause error) *ServiceError {
	return newError(CodeAnalysisFailed, "analysis failed", http.StatusInternalServerError, cause)
}

// Internal marks an unexpected store or logic failure.
func Internal(message string, cause error) *ServiceError {
	if message == "" {
		message = "internal server error"
	}
	return newError(CodeInternal, message, http.StatusInternalServerError, cause)
}

// GetServiceError returns the ServiceError in err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return nil
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	serviceErr := GetServiceError(err)
	return serviceErr != nil && serviceErr.Code == code
}
