package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

// DefaultRegion is used to parse phone numbers written without a country code.
const DefaultRegion = "IN"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for field, code := range v {
		parts = append(parts, field+": "+code)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func MinInt(field string, val, minVal int, v Violations) {
	if val < minVal {
		v[field] = "out_of_range"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
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
	return v
}

// RegisterRule adds a named tag usable in `validate` struct tags.
func RegisterRule(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// tagCodes maps validator tags onto the codes returned to clients.
var tagCodes = map[string]string{
	"required": "required",
	"gt":       "must_be_positive",
	"gte":      "must_not_be_negative",
	"min":      "out_of_range",
	"max":      "out_of_range",
	"email":    "invalid_email",
	"url":      "invalid_url",
}

// Struct runs validator tags on s and merges failures into v, keyed by the
// json name of the field.
func Struct(s any, v Violations) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		code, ok := tagCodes[fe.Tag()]
		if !ok {
			code = "invalid_" + fe.Tag()
		}
		v[fe.Field()] = code
	}
	return nil
}

// NormalizePhone formats a parseable number in international format.
// Unparseable input is returned unchanged with ok=false.
func NormalizePhone(value string) (string, bool) {
	p, err := libphonenumber.Parse(value, DefaultRegion)
	if err != nil || !libphonenumber.IsValidNumber(p) {
		return value, false
	}
	return libphonenumber.Format(p, libphonenumber.INTERNATIONAL), true
}
