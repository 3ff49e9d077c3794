package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs the struct's validate tags and reports the first failing
// field as a validation error.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return validationError(err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return validationError(fmt.Sprintf("Please add a %s", fe.Field()))
	case "max":
		return validationError(fmt.Sprintf("%s can not be more than %s characters", fe.Field(), fe.Param()))
	case "len":
		return validationError(fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param()))
	case "email":
		return validationError("Please add a valid email")
	case "oneof":
		return validationError(fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
	default:
		return validationError(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
