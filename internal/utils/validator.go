// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("slug", validateSlug)
	validate.RegisterValidation("locale", validateLocale)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateSlug(fl validator.FieldLevel) bool {
	slug := fl.Field().String()

	if len(slug) < 1 || len(slug) > 255 {
		return false
	}

	matched, _ := regexp.MatchString("^[a-z0-9]+(?:-[a-z0-9]+)*$", slug)
	return matched
}

func validateLocale(fl validator.FieldLevel) bool {
	locale := fl.Field().String()

	// "en", "fa", "en-US", "zh-TW"
	matched, _ := regexp.MatchString("^[a-z]{2}(?:-[A-Za-z]{2,4})?$", locale)
	return matched
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "slug":
		return e.Field() + " must be a lowercase hyphenated slug"
	case "locale":
		return e.Field() + " must be a valid locale code"
	case "uuid4":
		return e.Field() + " must be a valid UUID"
	default:
		return e.Field() + " is invalid"
	}
}
