package payment

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCardNumber   = errors.New("invalid card number")
	ErrInvalidExpiry       = errors.New("invalid expiry date")
	ErrInvalidCvv          = errors.New("invalid CVV")
	ErrInvalidMobileNumber = errors.New("invalid mobile number")
	ErrInvalidPin          = errors.New("invalid PIN")

	ErrUnsupportedMethod = errors.New("unsupported payment method")
	ErrAbandoned         = errors.New("payment attempt abandoned")
)

// ValidationError reports the first input field that failed validation.
// Match the reason with errors.Is against the ErrInvalid* values.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Code is the machine readable reason, e.g. "invalid_card_number".
func (e *ValidationError) Code() string {
	switch {
	case errors.Is(e.Err, ErrInvalidCardNumber):
		return "invalid_card_number"
	case errors.Is(e.Err, ErrInvalidExpiry):
		return "invalid_expiry"
	case errors.Is(e.Err, ErrInvalidCvv):
		return "invalid_cvv"
	case errors.Is(e.Err, ErrInvalidMobileNumber):
		return "invalid_mobile_number"
	case errors.Is(e.Err, ErrInvalidPin):
		return "invalid_pin"
	default:
		return "invalid_payment"
	}
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
