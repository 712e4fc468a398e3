package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/duke-dds/dds-engine/pkg/apperrors"
	"github.com/duke-dds/dds-engine/pkg/roles"
)

// Reasons reported per field in a ValidationError.
const (
	ReasonRequired    = "can't be blank"
	ReasonTooLong     = "is too long"
	ReasonInvalidRole = "invalid_role"
	ReasonInvalid     = "is invalid"
)

// newValidator builds the payload validator. Field errors are keyed by JSON
// name, and project_role accepts only roles grantable on a project.
func newValidator(registry *roles.Registry) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("project_role", func(fl validator.FieldLevel) bool {
		return registry.Grantable(fl.Field().String())
	})

	return v
}

// checkInput runs struct validation and converts failures to *apperrors.ValidationError.
func checkInput(v *validator.Validate, input any) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &apperrors.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields[fe.Field()] = reasonFor(fe.Tag())
	}
	return verr
}

func reasonFor(tag string) string {
	switch tag {
	case "required":
		return ReasonRequired
	case "max":
		return ReasonTooLong
	case "project_role":
		return ReasonInvalidRole
	default:
		return ReasonInvalid
	}
}
