package apperrors

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// NewValidate returns a go-playground validator reporting fields by their
// json name.
func NewValidate() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// Collect adds every field error of a validator run. Anything else is a
// misuse of the validator and is reported against "input".
func (v *Validator) Collect(err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v.Add("input", "%v", err)
		return
	}
	for _, fe := range fieldErrs {
		v.Add(fe.Field(), "%s", describe(fe))
	}
}

func describe(fe validator.FieldError) string {
	text := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if text {
			if fe.Param() == "1" {
				return "is required"
			}
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if text {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gtfield":
		return "must be after " + snake(fe.Param())
	case "latitude", "longitude":
		return "is not a valid " + fe.Tag()
	}
	return "failed the " + fe.Tag() + " check"
}

// snake turns a Go field name into its json spelling, StartTime -> start_time.
func snake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
