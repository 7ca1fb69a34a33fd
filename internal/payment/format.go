package payment

import "strings"

// FormatCardNumber groups the digits of a card number in blocks of four.
func FormatCardNumber(value string) string {
	digits := onlyDigits(value)
	var b strings.Builder
	for i := 0; i < len(digits); i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}

// FormatExpiry turns raw input such as "1229" into "12/29".
func FormatExpiry(value string) string {
	digits := onlyDigits(value)
	if len(digits) < 2 {
		return digits
	}
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits[:2] + "/" + digits[2:]
}

// MaskCardNumber keeps only the last four digits.
func MaskCardNumber(value string) string {
	digits := stripSpaces(value)
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
