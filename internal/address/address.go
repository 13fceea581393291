// Package address normalizes and validates shipping addresses.
package address

import "context"

// Validator checks an address and returns its normalized form.
// Implementations: BasicValidator
type Validator interface {
	// Validate checks if an address is complete and well-formed.
	// NormalizedAddress is set whenever validation ran, even if IsValid is false.
	Validate(ctx context.Context, addr Address) (*ValidationResult, error)
}

// Address represents a physical shipping address.
type Address struct {
	FullName     string `validate:"required,max=200"`
	AddressLine1 string `validate:"required,max=200"`
	AddressLine2 string `validate:"max=200"`
	City         string `validate:"required,max=100"`
	State        string `validate:"max=100"`
	PostalCode   string `validate:"required,max=20"`
	Country      string `validate:"required,iso3166_1_alpha2"`
	Phone        string `validate:"omitempty,max=40"`
}

// ValidationResult contains the outcome of address validation.
type ValidationResult struct {
	IsValid           bool
	NormalizedAddress *Address
	Errors            []ValidationError
}

// ValidationError represents a specific field failure.
type ValidationError struct {
	Field   string
	Message string
}

// FirstError returns the first failure message, or "".
func (r *ValidationResult) FirstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Field + ": " + r.Errors[0].Message
}
