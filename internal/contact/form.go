// Package contact accepts contact form submissions: it validates them,
// throttles per client, stores them and forwards them to the CMS.
package contact

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen    = 100
	maxEmailLen   = 254
	maxFieldLen   = 100
	maxMessageLen = 5000
)

type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Message string `json:"message"`
	Locale  string `json:"locale"`
}

// ValidationError names the first offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
		Company: strings.TrimSpace(f.Company),
		Message: strings.TrimSpace(f.Message),
		Locale:  strings.ToLower(strings.TrimSpace(f.Locale)),
	}
}

func (f Form) Validate() error {
	switch {
	case f.Name == "":
		return &ValidationError{Field: "name", Message: "is required"}
	case utf8.RuneCountInString(f.Name) > maxNameLen:
		return &ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", maxNameLen)}
	case f.Email == "":
		return &ValidationError{Field: "email", Message: "is required"}
	case len(f.Email) > maxEmailLen || !validEmail(f.Email):
		return &ValidationError{Field: "email", Message: "is not a valid address"}
	case utf8.RuneCountInString(f.Phone) > maxFieldLen:
		return &ValidationError{Field: "phone", Message: fmt.Sprintf("must be at most %d characters", maxFieldLen)}
	case utf8.RuneCountInString(f.Company) > maxFieldLen:
		return &ValidationError{Field: "company", Message: fmt.Sprintf("must be at most %d characters", maxFieldLen)}
	case f.Message == "":
		return &ValidationError{Field: "message", Message: "is required"}
	case utf8.RuneCountInString(f.Message) > maxMessageLen:
		return &ValidationError{Field: "message", Message: fmt.Sprintf("must be at most %d characters", maxMessageLen)}
	}
	return nil
}

// validEmail accepts a bare address only; display-name forms are rejected.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
