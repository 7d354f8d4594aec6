package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	std     *validator.Validate
	stdOnce sync.Once
)

// Init configures the global validator used by Gin's binding: JSON tag names
// in errors and the directory tags (pwd, cpf, document, cep).
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

// Struct validates s with the same `binding` tags Gin uses, so services can
// check input that did not come through a handler.
func Struct(s any) error {
	stdOnce.Do(func() {
		std = validator.New(validator.WithRequiredStructEnabled())
		std.SetTagName("binding")
		configure(std)
	})
	return std.Struct(s)
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("pwd", "min=6")
	_ = v.RegisterValidation("document", digitsOf(11, 14))
	_ = v.RegisterValidation("cpf", digitsOf(11))
	_ = v.RegisterValidation("cep", digitsOf(8))
}

// digitsOf accepts strings whose digit count is one of n, ignoring the
// punctuation of formatted documents.
func digitsOf(n ...int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		got := len(Digits(fl.Field().String()))
		for _, want := range n {
			if got == want {
				return true
			}
		}
		return false
	}
}

// Digits keeps only ASCII digits: "123.456.789-09" -> "12345678909".
func Digits(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b = append(b, s[i])
		}
	}
	return string(b)
}

// ToDetails converts binding errors into a map[field]message for the error
// envelope.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return map[string]string{"payload": "empty body"}
	case errors.As(err, &se), errors.As(err, &ute):
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = message(fe)
		}
		return out
	}
	return map[string]string{"payload": "invalid payload"}
}

var fixedMessages = map[string]string{
	"required":  "is required",
	"email":     "must be a valid email",
	"url":       "must be a valid URL",
	"datauri":   "must be a valid data URI",
	"hexcolor":  "must be a valid hexadecimal color",
	"numeric":   "must be numeric",
	"latitude":  "must be a valid latitude",
	"longitude": "must be a valid longitude",
	"pwd":       "min length 6",
	"document":  "must be a CPF (11 digits) or CNPJ (14 digits)",
	"cpf":       "must be a CPF with 11 digits",
	"cep":       "must be a postal code with 8 digits",
}

func message(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	param := fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters long"
	}
	switch fe.Tag() {
	case "len":
		return fmt.Sprintf("must be exactly %s%s", param, unit)
	case "min":
		return "must be at least " + param + unit
	case "max":
		return "must be at most " + param + unit
	case "gt":
		return "must be greater than " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	}
	if param != "" {
		return fmt.Sprintf("failed %s=%s", fe.Tag(), param)
	}
	return "failed " + fe.Tag()
}
