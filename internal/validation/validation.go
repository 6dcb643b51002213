// Package validation holds pure format checks for customer contact fields.
// It has no dependencies on the rest of the module.
package validation

import (
	"errors"
	"regexp"
)

var (
	ErrInvalidEmail = errors.New("Invalid email format")
	ErrInvalidPhone = errors.New("Invalid phone number format")
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// Accepted phone shapes: international form (optional leading +, then
	// 10-15 digits) or NNN-NNN-NNNN.
	phoneRegex = regexp.MustCompile(`^(\+?\d{10,15}|\d{3}-\d{3}-\d{4})$`)
)

// Email reports whether email matches standard email syntax.
func Email(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// Phone validates an optional phone number. A nil or empty phone is accepted.
func Phone(phone *string) error {
	if phone == nil || *phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(*phone) {
		return ErrInvalidPhone
	}
	return nil
}

// Contact runs the email and phone checks, returning the first failure.
func Contact(email string, phone *string) error {
	if err := Email(email); err != nil {
		return err
	}
	return Phone(phone)
}
