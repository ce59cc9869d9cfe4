// Package validation provides custom validation rules for the application.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/orders/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// notBlankRule validates that a string contains non-whitespace characters.
type notBlankRule struct{}

// NotBlank rejects strings that are empty or contain only whitespace.
var NotBlank = notBlankRule{}

// Validate checks if the value is a non-blank string.
func (r notBlankRule) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_not_blank", "must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "cannot be blank")
	}
	return nil
}

// uuidRequiredRule rejects the zero UUID. Required alone does not catch it
// because a uuid.UUID is a fixed-size array and never counts as empty.
type uuidRequiredRule struct{}

// UUIDRequired validates that a uuid.UUID field carries a non-zero value.
var UUIDRequired = uuidRequiredRule{}

// Validate checks if the value is a non-zero UUID.
func (r uuidRequiredRule) Validate(value interface{}) error {
	id, ok := value.(uuid.UUID)
	if !ok {
		return validation.NewError("validation_uuid_required", "must be a UUID")
	}
	if id == uuid.Nil {
		return validation.NewError("validation_uuid_required", "is required")
	}
	return nil
}

// emailRule validates email format.
type emailRule struct{}

// Email validates that a string looks like an email address.
var Email = emailRule{}

// Validate checks if the value is a well-formed email address.
func (r emailRule) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_email", "must be a string")
	}
	if !emailRegex.MatchString(s) {
		return validation.NewError("validation_email", "must be a valid email address")
	}
	return nil
}

// DecimalPlaces validates that a float carries at most Max fractional digits.
// Monetary amounts use Max = 2.
type DecimalPlaces struct {
	Max int
}

// Validate checks the fractional precision of the value.
func (d DecimalPlaces) Validate(value interface{}) error {
	f, ok := value.(float64)
	if !ok {
		return validation.NewError("validation_decimal_places", "must be a number")
	}

	shift := math.Pow(10, float64(d.Max))
	scaled := f * shift
	if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
		return validation.NewError(
			"validation_decimal_places",
			fmt.Sprintf("must have at most %d decimal places", d.Max),
		)
	}
	return nil
}
