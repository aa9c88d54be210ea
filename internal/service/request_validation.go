package service

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var requestValidator = newRequestValidator()

// newRequestValidator builds the validator evaluating request struct tags.
// Field names in errors come from the json tag so messages match the wire
// format clients actually send.
func newRequestValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("bestof", validateBestOf)

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// validateBestOf requires an odd series length
func validateBestOf(fl validator.FieldLevel) bool {
	bestOf := fl.Field().Int()
	return bestOf > 0 && bestOf%2 == 1
}

// Validate checks the request against its declared constraints
func (r SimulationRequest) Validate() error {
	err := requestValidator.Struct(r)
	if err == nil {
		return nil
	}

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, fieldErr := range validationErrors {
			messages = append(messages, fmt.Sprintf("%s failed on '%s'", fieldErr.Field(), fieldErr.Tag()))
		}
		return fmt.Errorf("invalid simulation request: %s", strings.Join(messages, "; "))
	}
	return fmt.Errorf("invalid simulation request: %w", err)
}
