package shop

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "{0} cannot be blank"
	shippingTag  = "shipping_required"
	shippingText = "{0} is required for physical items"
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	registerCustomTranslation(notBlankTag, notBlankText)

	Validate.RegisterStructValidation(orderFormStructValidation, OrderForm{})
	registerCustomTranslation(shippingTag, shippingText)
}

func registerCustomTranslation(tag, text string) {
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// orderFormStructValidation requires a shipping address for physical items
func orderFormStructValidation(sl validator.StructLevel) {
	form, ok := sl.Current().Interface().(OrderForm)
	if !ok || !form.physical {
		return
	}
	if strings.TrimSpace(form.Address) == "" {
		sl.ReportError(form.Address, "address", "Address", shippingTag, "")
	}
	if strings.TrimSpace(form.Country) == "" {
		sl.ReportError(form.Country, "country", "Country", shippingTag, "")
	}
}
