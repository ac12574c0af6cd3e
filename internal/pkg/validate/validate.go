// Package validate wraps a shared validator instance for request payloads.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// The singleton is built at package load. Register custom validations in an
// init() func so they exist before the first Struct call.
var v = validator.New()

// Struct checks s against its validate tags and flattens any violations
// into a single error suitable for a 400 response body.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
