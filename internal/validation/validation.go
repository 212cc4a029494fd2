// Package validation checks decoded request bodies against struct tags.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
}

type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// Struct returns one FieldError per failed rule; nil means data is valid.
func Struct(data any) []FieldError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []FieldError{{Field: "", Tag: "invalid"}}
	}

	out := make([]FieldError, 0, len(fieldErrors))
	for _, e := range fieldErrors {
		out = append(out, FieldError{
			Field: trimRoot(e.Namespace()),
			Tag:   e.Tag(),
			Param: e.Param(),
		})
	}
	return out
}

// trimRoot drops the struct type name so nested fields read "address.city".
func trimRoot(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
