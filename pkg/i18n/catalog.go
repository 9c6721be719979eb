// Package i18n resolves message keys to locale text and translates validation errors.
package i18n

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	pt_BR_translations "github.com/go-playground/validator/v10/translations/pt_BR"
)

// DefaultLocale is used when no locale, or an unknown one, is configured.
const DefaultLocale = "en"

// Catalog is a single-locale message table.
type Catalog struct {
	locale string
	trans  ut.Translator
}

// New builds the catalog for locale ("en" or "pt_BR"; "pt-BR" is accepted too).
func New(locale string) (*Catalog, error) {
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "-", "_")
	if locale == "" {
		locale = DefaultLocale
	}
	uni := ut.New(en.New(), en.New(), pt_BR.New())
	trans, ok := uni.GetTranslator(locale)
	if !ok {
		return nil, fmt.Errorf("unsupported locale %q", locale)
	}
	table := english
	if trans.Locale() == pt_BR.New().Locale() {
		table = portuguese
	}
	for k, v := range table {
		if err := trans.Add(k, v, true); err != nil {
			return nil, fmt.Errorf("add message %s: %w", k, err)
		}
	}
	return &Catalog{locale: trans.Locale(), trans: trans}, nil
}

// Locale returns the catalog's locale name.
func (c *Catalog) Locale() string { return c.locale }

// T returns the text for key, or the key itself when it has no entry.
func (c *Catalog) T(key string) string {
	s, err := c.trans.T(key)
	if err != nil || s == "" {
		return key
	}
	return s
}

// RegisterValidator installs the locale's default validation messages on v and makes
// field names in errors follow the json (or form) tag.
func (c *Catalog) RegisterValidator(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)
	switch c.locale {
	case pt_BR.New().Locale():
		return pt_BR_translations.RegisterDefaultTranslations(v, c.trans)
	default:
		return en_translations.RegisterDefaultTranslations(v, c.trans)
	}
}

// ValidationErrors flattens err into field -> message. ok is false when err does not
// come from the validator.
func (c *Catalog) ValidationErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fe.Translate(c.trans)
	}
	return out, true
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}
