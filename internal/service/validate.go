package service

import (
	"errors"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/set-night/sharemitra/internal/domain"
	"github.com/shopspring/decimal"
)

var ifscPattern = regexp.MustCompile(`^[A-Za-z]{4}0[A-Za-z0-9]{6}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("ifsc", func(fl validator.FieldLevel) bool {
		return ifscPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("link", func(fl validator.FieldLevel) bool {
		return isLink(fl.Field().String())
	})
	// Money fields validate as numbers, so `gt=0` works on them.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// isLink accepts absolute http, https and ftp URLs with a host.
func isLink(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp":
		return true
	}
	return false
}

// validateStruct runs the struct tags and turns failures into one
// ErrInvalidInput listing field:tag pairs.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return domain.Invalid("%v", err)
	}
	fields := make([]string, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, fe.Field()+":"+fe.Tag())
	}
	sort.Strings(fields)
	return domain.Invalid("invalid fields %s", strings.Join(fields, ", "))
}
