package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

var messages = map[string]string{
	"required": "The field '%s' is required.",
	"oneof":    "The field '%s' must be one of [%s].",
	"hexcolor": "The field '%s' must be a hex colour.",
	"datetime": "The field '%s' must match the layout %s.",
	"min":      "The field '%s' must be at least %s.",
	"max":      "The field '%s' must be no longer than %s.",
	"gt":       "The field '%s' must be greater than %s.",
	"gte":      "The field '%s' must be at least %s.",
	"lte":      "The field '%s' must be at most %s.",
	"email":    "The field '%s' must be a valid email address.",
}

func message(e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("Field '%s' is invalid: %s", e.Field(), e.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, e.Field(), e.Param())
	}
	return fmt.Sprintf(msg, e.Field())
}

// Error carries per-field messages keyed by JSON field name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, " ")
}

// Struct validates s and returns an *Error listing every failing field, or nil.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, e := range fieldErrs {
		out.Fields[e.Field()] = message(e)
	}
	return out
}
