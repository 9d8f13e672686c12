// Package validation wraps go-playground/validator with the custom tags shared
// by the lab and equipment validators, and translates its errors into
// field/message pairs keyed by JSON names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"unilab/pkg/logger"
	"unilab/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as a field → message map for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// Field builds a single-entry ValidationErrors for rule checks that live
// outside struct tags.
func Field(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

type Validator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func New(log *logger.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("hhmm", validateClock); err != nil {
		log.Fatal("Failed to register 'hhmm' validator", "error", err)
	}
	if err := v.RegisterValidation("status", validateStatus); err != nil {
		log.Fatal("Failed to register 'status' validator", "error", err)
	}

	return &Validator{
		validate: v,
		logger:   log,
	}
}

func validateClock(fl validator.FieldLevel) bool {
	return model.IsClock(fl.Field().String())
}

func validateStatus(fl validator.FieldLevel) bool {
	return model.Status(fl.Field().String()).Valid()
}

// Struct validates s and returns ValidationErrors for tag violations.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		field := fieldPath(err.Namespace())
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			if isNumeric(err.Kind()) {
				message = fmt.Sprintf("%s must be at least %s", field, err.Param())
			} else {
				message = fmt.Sprintf("%s must be at least %s characters", field, err.Param())
			}
		case "max":
			if isNumeric(err.Kind()) {
				message = fmt.Sprintf("%s must be at most %s", field, err.Param())
			} else {
				message = fmt.Sprintf("%s must be at most %s characters", field, err.Param())
			}
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object id", field)
		case "hhmm":
			message = fmt.Sprintf("%s must be in HH:MM 24-hour format", field)
		case "status":
			message = fmt.Sprintf("%s must be one of pending, accepted, rejected", field)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
		})
	}

	return validationErrors
}

// fieldPath drops the root struct name: "BookingRequest.duration.from" becomes
// "duration.from".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
