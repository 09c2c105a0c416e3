package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TextTag restricts a string to letters (any script, accents included),
// ASCII digits, spaces and the punctuation -.,:;!
const TextTag = "puzzletext"

var textPattern = regexp.MustCompile(`^[\p{L}\p{M}0-9 .,:;!\-]*$`)

// v is the package-level singleton validator. It is initialised once at
// package load time and is safe for concurrent use afterwards.
var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := val.RegisterValidation(TextTag, func(fl validator.FieldLevel) bool {
		return textPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic("register " + TextTag + ": " + err.Error())
	}
	return val
}

// Var checks a single value against tag and returns a human-readable message
// naming field, or "" when the value is valid.
func Var(field string, value interface{}, tag string) string {
	err := v.Var(value, tag)
	if err == nil {
		return ""
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return fmt.Sprintf("%s is invalid", field)
	}
	return message(field, ve[0])
}

// Struct validates the given struct using its validate tags and returns one
// message per failing field, in declaration order. A nil slice means valid.
func Struct(s interface{}) ([]string, error) {
	err := v.Struct(s)
	if err == nil {
		return nil, nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, message(fe.Field(), fe))
	}
	return msgs, nil
}

func message(field string, fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "alphanum":
		return fmt.Sprintf("%s may only contain letters and digits", field)
	case TextTag:
		return fmt.Sprintf("%s may only contain letters, digits, spaces and -.,:;!", field)
	default:
		return fmt.Sprintf("field '%s' failed '%s'", field, fe.Tag())
	}
}
