// Package validation provides input validation for wizard drafts using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bookdenapp/bookden-bot/internal/store"
)

// isbnPattern matches a normalized ISBN-10 (nine digits plus a digit or X
// checksum) or ISBN-13 (thirteen digits).
var isbnPattern = regexp.MustCompile(`^\d{9}[\dXx]$|^\d{13}$`)

// NormalizeISBN strips hyphens and spaces from an ISBN.
func NormalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	return strings.ReplaceAll(isbn, " ", "")
}

// ValidISBN reports whether the input is a well-formed ISBN-10 or ISBN-13
// after normalization.
func ValidISBN(isbn string) bool {
	return isbnPattern.MatchString(NormalizeISBN(isbn))
}

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain. The "bookisbn" rule
// accepts the same normalized ISBN-10/13 pattern the wizard steps enforce.
func New() *Validator {
	v := validator.New()

	// Registration only fails for empty tag names.
	if err := v.RegisterValidation("bookisbn", func(fl validator.FieldLevel) bool {
		return ValidISBN(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register bookisbn rule: %v", err))
	}

	return &Validator{v: v}
}

// Validate validates a struct and returns a typed domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to a store.ErrInvalidInput.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", e.Field(), e.Tag()))
	}
	return store.ErrInvalidInput.WithMessage("invalid fields: " + strings.Join(fields, ", "))
}
