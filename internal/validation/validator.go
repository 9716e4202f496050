// Package validation holds the process-wide validator and turns its field
// errors into InvalidRequest errors with per-field messages.
//
// Optional[T] fields validate their inner value when one is present; absent
// and null fields pass any tag list that starts with omitnil.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

type enum interface {
	Valid() bool
}

func Get() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		v.RegisterCustomTypeFunc(unwrapOptional,
			models.Optional[string]{},
			models.Optional[int]{},
			models.Optional[int64]{},
			models.Optional[bool]{},
			models.Optional[float64]{},
			models.Optional[models.UserRole]{},
			models.Optional[models.MediaCategory]{},
			models.Optional[models.MediaType]{},
			models.Optional[models.StreamFormat]{},
			models.Optional[models.SubtitleFormat]{},
		)

		_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			e, ok := fl.Field().Interface().(enum)
			return ok && e.Valid()
		})

		validate = v
	})
	return validate
}

// unwrapOptional hands the validator a *T: nil for an absent or null
// Optional, so omitnil skips it, otherwise a pointer to the value.
func unwrapOptional(field reflect.Value) interface{} {
	value := field.FieldByName("Value")
	if !field.FieldByName("Set").Bool() || field.FieldByName("Null").Bool() {
		return reflect.Zero(reflect.PointerTo(value.Type())).Interface()
	}
	ptr := reflect.New(value.Type())
	ptr.Elem().Set(value)
	return ptr.Interface()
}

// Struct validates s and returns an InvalidRequest error naming each bad field.
func Struct(s interface{}) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Unexpected(err)
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = translate(fe)
	}
	return &apperr.Error{
		Kind:    apperr.KindInvalidRequest,
		Message: "Invalid payload",
		Fields:  fields,
	}
}

var messages = map[string]string{
	"required": "%s is required",
	"url":      "%s must be a valid URL",
	"http_url": "%s must be a valid http(s) URL",
	"enum":     "%s has an unsupported value",
}

var messagesWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
}

func translate(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()
	if tmpl, ok := messages[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := messagesWithParam[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}
	isString := fe.Kind() == reflect.String
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}
