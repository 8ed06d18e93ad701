package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Custom validation tags
const (
	NotBlankTag = "notblank"
	DigitsTag   = "digits"
)

var digitsRegex = regexp.MustCompile(`^[0-9]+$`)

var (
	defaultValidate *validator.Validate
	validateOnce    sync.Once

	// each registered validator owns a translator; translation funcs are keyed by it
	translatorsMu sync.RWMutex
	translators   []ut.Translator
)

// FieldError is a translated validation failure for one field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newTranslator() ut.Translator {
	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	return trans
}

func setup() {
	validateOnce.Do(func() {
		defaultValidate = validator.New()
		_ = Register(defaultValidate)
	})
}

// Register installs the custom rules, JSON field naming and English translations on v.
// It is used for the package validator and for gin's binding engine.
func Register(v *validator.Validate) error {
	translator := newTranslator()

	if err := en_translations.RegisterDefaultTranslations(v, translator); err != nil {
		return err
	}

	// Report JSON names instead of Go struct field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation(NotBlankTag, validators.NotBlank); err != nil {
		return err
	}
	if err := v.RegisterValidation(DigitsTag, func(fl validator.FieldLevel) bool {
		return digitsRegex.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}

	registerTranslation(v, translator, NotBlankTag, "{0} must not be blank")
	registerTranslation(v, translator, DigitsTag, "{0} must contain only digits")

	translatorsMu.Lock()
	translators = append(translators, translator)
	translatorsMu.Unlock()
	return nil
}

func registerTranslation(v *validator.Validate, translator ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Check reports whether value satisfies the validator tag expression
func Check(value interface{}, tag string) bool {
	setup()
	return defaultValidate.Var(value, tag) == nil
}

// Valid reports whether every `validate` tag on the struct s holds
func Valid(s interface{}) bool {
	return Struct(s) == nil
}

// Struct validates s and returns the raw validator error
func Struct(s interface{}) error {
	setup()
	return defaultValidate.Struct(s)
}

// Translate converts validator errors into field/message pairs.
// Errors that are not validation errors yield nil.
func Translate(err error) []FieldError {
	var verrs validator.ValidationErrors
	if err == nil || !errors.As(err, &verrs) {
		return nil
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: translate(fe),
		})
	}
	return out
}

// translate uses the first translator registered on the validator that produced fe.
// An unregistered translator yields the raw error text.
func translate(fe validator.FieldError) string {
	translatorsMu.RLock()
	defer translatorsMu.RUnlock()

	for _, trans := range translators {
		if msg := fe.Translate(trans); msg != fe.Error() {
			return msg
		}
	}
	return fe.Error()
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}
