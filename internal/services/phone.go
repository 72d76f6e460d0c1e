package services

import (
	"strings"
	"unicode"

	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
)

const (
	phoneDigits = 10
	otpDigits   = 6
)

// DigitsOnly drops every rune that is not an ASCII digit, so
// "98765 43210" and "98765-43210" both become "9876543210".
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return -1
		}
		return r
	}, s)
}

// ValidatePhone expects the output of DigitsOnly.
func ValidatePhone(phone string) error {
	if len(phone) != phoneDigits {
		return errs.NewValidationError("Enter valid number")
	}
	return nil
}

// ValidateOTP expects the output of DigitsOnly.
func ValidateOTP(code string) error {
	if len(code) != otpDigits {
		return errs.NewValidationError("Enter 6-digit OTP")
	}
	return nil
}
