package validation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ru_translations "github.com/go-playground/validator/v10/translations/ru"
)

// Validator проверяет структуры по тегам validate и переводит первую
// ошибку на русский.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	locale := ru.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("ru")
	if err := ru_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	return &Validator{validate: validate, translator: trans}, nil
}

var (
	defaultOnce sync.Once
	defaultV    *Validator
	defaultErr  error
)

// Default: общий экземпляр; validator.Validate кэширует разбор тегов и
// безопасен для параллельного использования.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultV, defaultErr = New()
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("validation: %v", defaultErr))
	}
	return defaultV
}

// Struct возвращает nil или ошибку с переводом первого нарушения.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	return errors.New(errs[0].Translate(v.translator))
}

// Struct проверяет s общим экземпляром.
func Struct(s any) error {
	return Default().Struct(s)
}
