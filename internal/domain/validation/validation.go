// Package validation collects field-level input errors so handlers can report
// them as a single 400 response. Struct rules are declared with `validate`
// tags and checked by go-playground/validator; rules that need the clock or
// the database are added by the services through Errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
}

// fieldName reports fields under their JSON names. Domain types without a
// json tag get the lower camel form of the Go name, with a trailing ID
// written as Id.
func fieldName(field reflect.StructField) string {
	if tag := field.Tag.Get("json"); tag != "" {
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}

	name := field.Name
	if strings.HasSuffix(name, "ID") {
		name = strings.TrimSuffix(name, "ID") + "Id"
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// Errors accumulates field messages; the first message per field wins.
type Errors struct {
	fields map[string]string
}

func (v *Errors) Add(field, message string) {
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, exists := v.fields[field]; exists {
		return
	}
	v.fields[field] = message
}

func (v *Errors) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

func (v *Errors) Has(field string) bool {
	_, ok := v.fields[field]
	return ok
}

// Collect runs the `validate` tags of input and adds every failure.
func (v *Errors) Collect(input any) {
	v.merge(validate.Struct(input), "")
}

// CollectVar checks a single value against tag and reports it as field.
func (v *Errors) CollectVar(field string, value any, tag string) {
	v.merge(validate.Var(value, tag), field)
}

func (v *Errors) merge(err error, field string) {
	if err == nil {
		return
	}
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		v.Add("input", err.Error())
		return
	}
	for _, failure := range failures {
		name := field
		if name == "" {
			name = failure.Field()
		}
		v.Add(name, message(failure))
	}
}

// Err returns nil when nothing was added.
func (v *Errors) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &Error{Fields: v.fields}
}

func Struct(input any) error {
	var v Errors
	v.Collect(input)
	return v.Err()
}

func Var(field string, value any, tag string) error {
	var v Errors
	v.CollectVar(field, value, tag)
	return v.Err()
}

var layoutNames = map[string]string{
	"2006-01-02": "YYYY-MM-DD",
	"15:04":      "HH:MM",
}

func message(failure validator.FieldError) string {
	param := failure.Param()
	switch failure.Tag() {
	case "required":
		return "is required"
	case "email":
		return "invalid email"
	case "uuid":
		return "must be a valid id"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "datetime":
		if name, ok := layoutNames[param]; ok {
			return "must be " + name
		}
		return "must match " + param
	case "min":
		if failure.Kind() == reflect.String {
			if param == "1" {
				return "must not be empty"
			}
			return fmt.Sprintf("must be at least %s characters", param)
		}
		return "must be at least " + param
	case "max":
		if failure.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", param)
		}
		return "must be at most " + param
	case "gt":
		return "must be greater than " + param
	case "gte":
		if param == "0" {
			return "must not be negative"
		}
		return "must be at least " + param
	default:
		return "failed " + failure.Tag()
	}
}
