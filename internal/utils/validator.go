// internal/utils/validator.go
package utils

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("strong_password", strongPassword)
	v.RegisterValidation("username", wellFormedUsername)
	return v
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// strongPassword requires 8+ characters mixing upper case, lower case, a
// digit and a symbol. Account takeover gives access to hiring decisions and
// escrow funding, so the bar is deliberately high.
func strongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// wellFormedUsername accepts 3-50 letters, digits and underscores. The
// username appears in notification emails and public profiles, so no
// whitespace or markup.
func wellFormedUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()
	if len(username) < 3 || len(username) > 50 {
		return false
	}
	for _, r := range username {
		ok := r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9')
		if !ok {
			return false
		}
	}
	return true
}

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
				Message: describeFieldError(e),
			})
		}
	}

	return validationErrors
}

func describeFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "invalid email address"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "gt":
		return field + " must be greater than " + e.Param()
	case "oneof":
		return field + " must be one of: " + strings.Join(strings.Fields(e.Param()), ", ")
	case "strong_password":
		return "password needs 8+ characters with upper case, lower case, a digit and a symbol"
	case "username":
		return "username must be 3-50 characters using only letters, digits and underscores"
	default:
		return field + " is invalid"
	}
}
