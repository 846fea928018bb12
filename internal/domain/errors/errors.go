package errors

import (
	"net/http"

	"canopy/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Tenant-related errors
	ErrOrgNotFound = NewBaseError(
		http.StatusNotFound,
		"ORG_NOT_FOUND",
		"Organization not found",
		"",
	)

	ErrTenantMismatch = NewBaseError(
		http.StatusForbidden,
		"TENANT_MISMATCH",
		"Resource belongs to another organization",
		"",
	)

	// Auth-related errors
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"User not found",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"This email is already registered",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Incorrect email or password",
		"",
	)

	ErrRefreshTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"REFRESH_TOKEN_INVALID",
		"Invalid or expired refresh token",
		"",
	)

	ErrOAuthTokenInvalid = NewBaseError(
		http.StatusBadRequest,
		"OAUTH_TOKEN_INVALID",
		"Invalid ID token",
		"",
	)

	// Catalog errors
	ErrProductNotFound = NewBaseError(
		http.StatusNotFound,
		"PRODUCT_NOT_FOUND",
		"Product not found",
		"",
	)

	ErrProductInactive = NewBaseError(
		http.StatusUnprocessableEntity,
		"PRODUCT_INACTIVE",
		"Product is not available for sale",
		"",
	)

	ErrRetailerNotFound = NewBaseError(
		http.StatusNotFound,
		"RETAILER_NOT_FOUND",
		"Retailer not found",
		"",
	)

	// Checkout errors
	ErrInvalidCoupon = NewBaseError(
		http.StatusUnprocessableEntity,
		"INVALID_COUPON",
		"Invalid Coupon",
		"",
	)

	ErrEmptyCart = NewBaseError(
		http.StatusBadRequest,
		"EMPTY_CART",
		"Cart has no items",
		"",
	)

	ErrInvalidQuantity = NewBaseError(
		http.StatusBadRequest,
		"INVALID_QUANTITY",
		"Item quantity must be at least 1",
		"",
	)

	ErrOrderNotFound = NewBaseError(
		http.StatusNotFound,
		"ORDER_NOT_FOUND",
		"Order not found",
		"",
	)

	ErrInvalidOrderTransition = NewBaseError(
		http.StatusConflict,
		"INVALID_ORDER_TRANSITION",
		"Order status transition is not allowed",
		"",
	)

	ErrPaymentFailed = NewBaseError(
		http.StatusBadGateway,
		"PAYMENT_FAILED",
		"Payment could not be processed",
		"",
	)

	ErrWebhookSignature = NewBaseError(
		http.StatusUnauthorized,
		"WEBHOOK_SIGNATURE",
		"Webhook signature verification failed",
		"",
	)

	// Metering errors
	ErrUnknownMetric = NewBaseError(
		http.StatusBadRequest,
		"UNKNOWN_METRIC",
		"Unknown usage metric",
		"",
	)

	// Playbook errors
	ErrPlaybookNotFound = NewBaseError(
		http.StatusNotFound,
		"PLAYBOOK_NOT_FOUND",
		"Playbook not found",
		"",
	)

	ErrPlaybookDisabled = NewBaseError(
		http.StatusConflict,
		"PLAYBOOK_DISABLED",
		"Playbook is disabled",
		"",
	)

	ErrPlaybookInvalid = NewBaseError(
		http.StatusBadRequest,
		"PLAYBOOK_INVALID",
		"Playbook definition is invalid",
		"",
	)

	// Goal errors
	ErrGoalNotFound = NewBaseError(
		http.StatusNotFound,
		"GOAL_NOT_FOUND",
		"Goal not found",
		"",
	)

	// Packaging errors
	ErrAnalysisNotFound = NewBaseError(
		http.StatusNotFound,
		"ANALYSIS_NOT_FOUND",
		"Packaging analysis not found",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"Access denied",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"Resource conflict",
		"",
	)
)

// DatastoreError represents a Firestore execution error, implementing
// the AppError interface.
type DatastoreError struct {
	err     error
	details string
}

// NewDatastoreError creates a datastore-related error
func NewDatastoreError(err error, details string) AppError {
	return &DatastoreError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatastoreError) Error() string {
	return errors.Wrap(e.err, "datastore execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatastoreError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatastoreError) ErrorCode() string {
	return "DATASTORE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatastoreError) Message() string {
	return "Datastore execution failed"
}

// Details returns detailed error information
func (e *DatastoreError) Details() string {
	return e.details
}
