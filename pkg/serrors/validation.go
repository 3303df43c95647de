package serrors

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// ValidationErrors maps a JSON field name to a human readable message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := v.Fields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the offending field names in a stable order.
func (v ValidationErrors) Fields() []string {
	out := make([]string, 0, len(v))
	for f := range v {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

var (
	setupOnce  sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

func setup() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	locale := en.New()
	translator, _ = ut.New(locale, locale).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}
}

// Validator returns the shared validator with JSON field naming and English messages.
func Validator() *validator.Validate {
	setupOnce.Do(setup)
	return validate
}

// ValidateStruct runs struct validation; it returns nil when v is valid.
func ValidateStruct(v any) ValidationErrors {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{"": err.Error()}
	}
	return ProcessValidatorErrors(verrs)
}

func ProcessValidatorErrors(errs validator.ValidationErrors) ValidationErrors {
	Validator()
	out := make(ValidationErrors, len(errs))
	for _, fe := range errs {
		if _, exists := out[fe.Field()]; exists {
			continue
		}
		out[fe.Field()] = fe.Translate(translator)
	}
	return out
}
