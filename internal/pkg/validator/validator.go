package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// FieldError is the first failed rule of a struct, keyed by its JSON name.
type FieldError struct {
	Field string
	Tag   string
}

// First validates v and returns the first failing field in declaration
// order, or nil when v is valid.
func First(v interface{}) *FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &FieldError{Tag: "invalid"}
	}
	return &FieldError{Field: verrs[0].Field(), Tag: verrs[0].Tag()}
}

// Message renders the error as "Missing <field>" for absent values and
// "Invalid <field>" for any other failed rule.
func (e *FieldError) Message() string {
	if e.Field == "" {
		return "Invalid input"
	}
	if e.Tag == "required" {
		return "Missing " + e.Field
	}
	return "Invalid " + e.Field
}

// Code is the machine-readable form of Message, e.g. MISSING_EMAIL.
func (e *FieldError) Code() string {
	if e.Field == "" {
		return "INVALID_INPUT"
	}
	prefix := "INVALID_"
	if e.Tag == "required" {
		prefix = "MISSING_"
	}
	return prefix + strings.ToUpper(e.Field)
}
