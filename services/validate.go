package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rpupo63/portfolio-backend/errs"
)

// bcryptMaxBytes is the longest input bcrypt accepts. It counts bytes, not runes.
const bcryptMaxBytes = 72

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func bcryptLength(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= bcryptMaxBytes
}

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		if err := validate.RegisterValidation("bcryptlen", bcryptLength); err != nil {
			panic(err)
		}
	})
	return validate
}

// validateForm runs the struct's validate tags and turns failures into a
// validation error keyed by json field name.
func validateForm(form any) error {
	err := formValidator().Struct(form)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return errs.NewInternalError("could not validate form").WithCause(err)
	}

	fields := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}
	return errs.NewValidationError(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long.", fe.Param())
	case "bcryptlen":
		return fmt.Sprintf("Must be at most %d bytes long. Accented and other non-ASCII characters take more than one.", bcryptMaxBytes)
	case "eqfield":
		return "Passwords must match."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return "Invalid value."
	}
}
