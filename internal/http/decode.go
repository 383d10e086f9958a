package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/example/workspace-booking/internal/application"
)

// payloadValidator checks structural constraints on request DTOs before any
// business rule runs. Field names in reported errors follow the json tags.
var payloadValidator = newPayloadValidator()

func newPayloadValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		tag := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return field.Name
		}
		return tag
	})
	return v
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// validatePayload runs the struct tags and converts any violations into the
// application's field-error shape.
func validatePayload(payload any) *application.ValidationError {
	err := payloadValidator.Struct(payload)
	if err == nil {
		return nil
	}

	vErr := &application.ValidationError{FieldErrors: map[string]string{}}
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		vErr.FieldErrors["payload"] = "invalid request payload"
		return vErr
	}

	for _, violation := range violations {
		field := violation.Field()
		if _, seen := vErr.FieldErrors[field]; seen {
			continue
		}
		vErr.FieldErrors[field] = violationMessage(violation)
	}
	return vErr
}

func violationMessage(violation validator.FieldError) string {
	switch violation.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", violation.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", violation.Field(), strings.ReplaceAll(violation.Param(), " ", ", "))
	case "min":
		if violation.Kind() == reflect.Slice || violation.Kind() == reflect.Map {
			return fmt.Sprintf("%s must contain at least %s items", violation.Field(), violation.Param())
		}
		return fmt.Sprintf("%s must be at least %s", violation.Field(), violation.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", violation.Field(), violation.Param())
	default:
		return fmt.Sprintf("%s is invalid", violation.Field())
	}
}
