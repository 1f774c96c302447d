package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned by repositories and services. Handlers map
// them to HTTP statuses through the error handler middleware.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrNoCredit            = errors.New("no listing credit")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductUnavailable  = errors.New("product unavailable")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidTransition   = errors.New("invalid order state transition")
	ErrReportNotFound      = errors.New("report not found")
	ErrReportResolved      = errors.New("report already resolved")
	ErrCartEmpty           = errors.New("cart is empty")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrDuplicatePayment    = errors.New("payment already processed")
	ErrForbidden           = errors.New("forbidden")
	ErrNotSeller           = errors.New("account is not a seller")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidReferralCode = errors.New("invalid referral code")
)

// AppError carries an application error code together with the HTTP
// status to respond with and an optional wrapped cause.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func Wrap(code, message string, status int, cause error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Cause: cause}
}

func BadRequest(message string) *AppError {
	return New("bad_request", message, http.StatusBadRequest)
}

func Unauthorized(message string) *AppError {
	return New("unauthorized", message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return New("forbidden", message, http.StatusForbidden)
}

func NotFound(message string) *AppError {
	return New("not_found", message, http.StatusNotFound)
}

func Conflict(message string) *AppError {
	return New("conflict", message, http.StatusConflict)
}

func Internal(message string, cause error) *AppError {
	return Wrap("internal", message, http.StatusInternalServerError, cause)
}
