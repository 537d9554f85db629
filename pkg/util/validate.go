package util

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks struct tags and returns a VALIDATION_FAILED error listing invalid fields.
func Validate(model any) error {
	err := validate.Struct(model)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError("invalid payload", nil)
	}
	fields := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = rule
	}
	return NewValidationError("invalid payload", map[string]any{"fields": fields})
}

// ValidateBody decodes a JSON body, applies `default` tags and validates it.
func ValidateBody(c *fiber.Ctx, model any) error {
	body := c.Body()
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, model); err != nil {
		return NewValidationError("invalid payload", nil)
	}
	if err := defaults.Set(model); err != nil {
		return NewInternalError(err)
	}
	return Validate(model)
}

// ValidateQuery parses query parameters, applies defaults and validates them.
func ValidateQuery(c *fiber.Ctx, model any) error {
	if err := c.QueryParser(model); err != nil {
		return NewValidationError("invalid query", nil)
	}
	if err := defaults.Set(model); err != nil {
		return NewInternalError(err)
	}
	return Validate(model)
}
