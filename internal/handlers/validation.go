package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"sembako/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// requestValidator reports field errors under their JSON names.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &requestValidator{validate: v}
}

// parse decodes the request body into req and validates it.
func (v *requestValidator) parse(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.Validation("Invalid request body", apperrors.FieldError{Field: "body", Message: "Request body must be valid JSON"})
	}
	return v.check(req)
}

func (v *requestValidator) check(req interface{}) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Internal("Could not validate request", err)
	}
	details := make([]apperrors.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, apperrors.FieldError{Field: e.Field(), Message: fieldMessage(e)})
	}
	return apperrors.Validation("Validation failed", details...)
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}

// idParam reads a positive integer route parameter.
func idParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("Invalid ID", apperrors.FieldError{Field: name, Message: "ID must be a positive integer"})
	}
	return uint(id), nil
}

// currentUserID returns the user stored by middleware.AuthRequired.
func currentUserID(c *fiber.Ctx) (uint, error) {
	userID, ok := c.Locals("user_id").(uint)
	if !ok || userID == 0 {
		return 0, apperrors.Auth("Authentication required", nil)
	}
	return userID, nil
}
