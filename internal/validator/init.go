// Package validator holds the process-wide validator instance used for
// partial-update payloads, which bypass gin's binding because their
// fields are all optional.
package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// GetValidator returns the shared instance.
func GetValidator() *validator.Validate {
	return validate
}
