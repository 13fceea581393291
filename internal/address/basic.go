package address

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usPostalCode = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// BasicValidator performs format validation without external API calls.
type BasicValidator struct {
	validate *validator.Validate
}

func NewBasicValidator() Validator {
	return &BasicValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate trims every field, upper-cases country and state, then checks
// required fields and the US postal code format.
func (v *BasicValidator) Validate(ctx context.Context, addr Address) (*ValidationResult, error) {
	n := normalize(addr)
	result := &ValidationResult{NormalizedAddress: &n}

	if err := v.validate.StructCtx(ctx, n); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("failed to validate address: %w", err)
		}
		for _, fe := range fieldErrs {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fe.Field(),
				Message: describe(fe),
			})
		}
	}

	if n.Country == "US" && n.PostalCode != "" && !usPostalCode.MatchString(n.PostalCode) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "PostalCode",
			Message: "must be a 5-digit ZIP or ZIP+4",
		})
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

func normalize(a Address) Address {
	return Address{
		FullName:     strings.TrimSpace(a.FullName),
		AddressLine1: strings.TrimSpace(a.AddressLine1),
		AddressLine2: strings.TrimSpace(a.AddressLine2),
		City:         strings.TrimSpace(a.City),
		State:        strings.ToUpper(strings.TrimSpace(a.State)),
		PostalCode:   strings.ToUpper(strings.TrimSpace(a.PostalCode)),
		Country:      strings.ToUpper(strings.TrimSpace(a.Country)),
		Phone:        strings.TrimSpace(a.Phone),
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "iso3166_1_alpha2":
		return "must be a two-letter country code"
	default:
		return "is invalid"
	}
}
