// Package validation provides HTTP request validation utilities using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/abdotaker608/golden-pens-api/internal/errors"
)

// Social profile URL patterns. The scheme and www prefix are optional since
// people paste these straight from the browser or from memory.
var (
	facebookProfileRe  = regexp.MustCompile(`^(https://)?(www\.)?(facebook\.com)/((profile\.php\?id=[\d]+)|([\w]+((\.|-)[\w]+)*))(/)?$`)
	instagramProfileRe = regexp.MustCompile(`^(https://)?(www\.)?(instagram\.com)/([\w]+(\.[\w]+)*)(/)?$`)
	twitterProfileRe   = regexp.MustCompile(`^(https://)?(www\.)?(twitter\.com)/[\w]+(/)?$`)
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove options like omitempty, -
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	// Profile URL validators for the author's social links.
	//nolint:errcheck // RegisterValidation only errors on an empty tag
	_ = v.RegisterValidation("fb_profile", matchValidator(facebookProfileRe))
	//nolint:errcheck // RegisterValidation only errors on an empty tag
	_ = v.RegisterValidation("insta_profile", matchValidator(instagramProfileRe))
	//nolint:errcheck // RegisterValidation only errors on an empty tag
	_ = v.RegisterValidation("twitter_profile", matchValidator(twitterProfileRe))

	return &Validator{v: v}
}

// matchValidator builds a validator func that accepts empty strings and
// otherwise requires a full regexp match.
func matchValidator(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return re.MatchString(value)
	}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Collect all field errors
	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	// Return domain validation error with details
	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "fb_profile":
		return "must be a valid Facebook profile URL"
	case "insta_profile":
		return "must be a valid Instagram profile URL"
	case "twitter_profile":
		return "must be a valid Twitter profile URL"
	default:
		return "is invalid"
	}
}
