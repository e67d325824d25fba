// Package validation configures go-playground/validator with JSON field names
// and English messages so clients see "email is a required field" instead of
// Go struct paths.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	once  sync.Once
	trans ut.Translator
)

func translator() ut.Translator {
	once.Do(func() {
		locale := en.New()
		uni := ut.New(locale, locale)
		trans, _ = uni.GetTranslator("en")
	})
	return trans
}

// New returns a validator that reports JSON field names and has English translations registered.
func New() *validator.Validate {
	v := validator.New()
	configure(v)
	return v
}

// SetupGin applies the same configuration to gin's binding engine.
func SetupGin() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = enTranslations.RegisterDefaultTranslations(v, translator())
}

// Translate maps a validation error to field → message. Non-validation errors
// are reported under "detail".
func Translate(err error) map[string]string {
	if err == nil {
		return nil
	}
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(translator())
		}
		return fields
	}
	fields["detail"] = err.Error()
	return fields
}
