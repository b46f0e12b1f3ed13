package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/account-service/pkg/util"
)

var validate = validator.New()

func init() {
	// Report validation errors under the json field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// bindAndValidate decodes the JSON body into dst and validates struct tags,
// returning field-level detail on failure.
func bindAndValidate(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("Invalid request payload", nil)
	}

	if err := validate.Struct(dst); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return apperrors.NewValidationError("Request validation failed", nil)
		}
		details := make(map[string]any, len(errs))
		for _, fieldError := range errs {
			details[fieldError.Field()] = validationMessage(fieldError)
		}
		return apperrors.NewValidationError("Request validation failed", details)
	}
	return nil
}

func validationMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
	case "max":
		return fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fieldError.Param())
	case "uuid":
		return "Must be a valid UUID"
	case "datetime":
		return fmt.Sprintf("Must be a date in %s format", fieldError.Param())
	case "url":
		return "Must be a valid URL"
	default:
		return "Invalid value"
	}
}
