package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeValidation       = "VALIDATION_FAILED"
	ErrCodeEmptyCart        = "EMPTY_CART"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeBelowMinimum     = "BELOW_MINIMUM_AMOUNT"
	ErrCodePaymentFailed    = "PAYMENT_FAILED"
	ErrCodePersistence      = "PERSISTENCE_FAILED"
	ErrCodeNotification     = "NOTIFICATION_FAILED"
	ErrCodeInvalidSelection = "INVALID_PICKUP_SELECTION"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// DomainError carries a stable code alongside a user-presentable message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart       = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrBelowMinimum    = NewDomainError(ErrCodeBelowMinimum, "Amount too low")
	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrInvalidQuantity = NewDomainError(ErrCodeValidation, "Quantity must be greater than zero")
	ErrStaleSelection  = NewDomainError(ErrCodeInvalidSelection, "Selected pickup time is no longer available")
)
