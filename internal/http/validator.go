package http

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func ValidateStruct(s interface{}) []ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs []ValidationError
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		var message string
		switch tag {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must have at least %s entries", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		fieldName := strings.ToLower(field[:1]) + field[1:]
		errs = append(errs, ValidationError{
			Field:   fieldName,
			Message: message,
		})
	}

	return errs
}
