package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and reports failures as a ValidationError.
func Validate(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return NewValidationError("Validation failed: " + FormatValidationError(err))
	}
	return nil
}

func FormatValidationError(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed on '%s'", e.Field(), e.Tag()))
		}
	}
	return strings.Join(messages, ", ")
}
