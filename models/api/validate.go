package apimodels

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"hr-timesheet-backend/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct проверка по тегам validate, ошибки приводятся к ValidationError
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	if ve, ok := err.(validator.ValidationErrors); ok {
		out := make([]string, 0, len(ve))
		for _, fe := range ve {
			out = append(out, formatFieldError(fe))
		}
		return models.NewValidationError(strings.Join(out, "; "))
	}
	return models.NewValidationError(err.Error())
}

// ValidateVar проверка одиночного значения, например ValidateVar(email, "email")
func ValidateVar(value interface{}, tag string) bool {
	return validate.Var(value, tag) == nil
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("поле '%s' обязательно для заполнения", fe.Field())
	case "email":
		return fmt.Sprintf("поле '%s' должно содержать корректную почту", fe.Field())
	case "min":
		return fmt.Sprintf("поле '%s' должно быть не меньше %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("поле '%s' должно быть не больше %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("поле '%s' должно быть не меньше %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("поле '%s' должно быть не больше %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("поле '%s' должно быть одним из: %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("поле '%s' должно быть в формате %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("поле '%s' не прошло проверку '%s'", fe.Field(), fe.Tag())
}
