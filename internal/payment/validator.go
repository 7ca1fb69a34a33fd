package payment

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/fjod/storefront/internal/domain"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	mobilePattern     = regexp.MustCompile(`^\d{11}$`)
	pinPattern        = regexp.MustCompile(`^\d{5}$`)
)

// Validator checks payment input locally before any attempt is made.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns nil or the first *ValidationError found. Card fields are
// checked in the order number, expiry, cvv; JazzCash in the order mobile, pin.
func (v *Validator) Validate(method domain.PaymentMethod) error {
	switch m := method.(type) {
	case domain.Card:
		return validateCard(m)
	case *domain.Card:
		if m == nil {
			return fmt.Errorf("%w: %T", ErrUnsupportedMethod, method)
		}
		return validateCard(*m)
	case domain.JazzCash:
		return validateJazzCash(m)
	case *domain.JazzCash:
		if m == nil {
			return fmt.Errorf("%w: %T", ErrUnsupportedMethod, method)
		}
		return validateJazzCash(*m)
	case domain.GooglePay, *domain.GooglePay:
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedMethod, method)
	}
}

func validateCard(c domain.Card) error {
	if !cardNumberPattern.MatchString(stripSpaces(c.Number)) {
		return invalid("card_number", ErrInvalidCardNumber)
	}
	if !expiryPattern.MatchString(c.Expiry) {
		return invalid("expiry", ErrInvalidExpiry)
	}
	if !cvvPattern.MatchString(c.CVV) {
		return invalid("cvv", ErrInvalidCvv)
	}
	return nil
}

func validateJazzCash(j domain.JazzCash) error {
	if !mobilePattern.MatchString(j.MobileNumber) {
		return invalid("mobile_number", ErrInvalidMobileNumber)
	}
	if !pinPattern.MatchString(j.PIN) {
		return invalid("pin", ErrInvalidPin)
	}
	return nil
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
