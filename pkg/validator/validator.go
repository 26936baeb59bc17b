package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var (
	validate   = validator.New()
	pageKeyRex = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)
)

func init() {
	// page keys are lowercase snake_case slugs, e.g. "ticket_management"
	validate.RegisterValidation("page_key", func(fl validator.FieldLevel) bool {
		return pageKeyRex.MatchString(fl.Field().String())
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: err.Error()}}
		}
		for _, err := range validationErrors {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}
