// Package validation builds struct validators with English error messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validator validates structs and reports failures by the field names of tagName.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New creates a Validator whose messages use the names in the tagName struct tag
// (for example "mapstructure" or "json").
func New(tagName string) (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get(tagName), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: validate, translator: trans}, nil
}

// FieldError is a single failed constraint.
type FieldError struct {
	// Field is the dotted path below the top-level struct.
	Field   string
	Message string
}

// Struct validates s. It returns nil or a slice of field errors.
func (v *Validator) Struct(s any) ([]FieldError, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, err
	}
	fieldErrors := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		fieldErrors = append(fieldErrors, FieldError{
			Field:   field,
			Message: e.Translate(v.translator),
		})
	}
	return fieldErrors, nil
}

// Messages joins field errors into one line.
func Messages(fieldErrors []FieldError) string {
	msgs := make([]string, len(fieldErrors))
	for i, fe := range fieldErrors {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, ", ")
}
