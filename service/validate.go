package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/layer-3/taskboard/core"
)

// fieldMessages holds client-facing messages keyed by struct namespace.
var fieldMessages = map[string]string{
	"RegisterInput.Name":          "Name must be between 2 and 50 characters",
	"RegisterInput.Email":         "Please provide a valid email",
	"RegisterInput.Password":      "Password must be at least 6 characters",
	"LoginInput.Email":            "Please provide a valid email",
	"LoginInput.Password":         "Password is required",
	"CreateTaskInput.Title":       "Title must be between 3 and 100 characters",
	"CreateTaskInput.Description": "Description must be between 1 and 500 characters",
	"CreateTaskInput.Priority":    "Invalid priority",
	"UpdateTaskInput.Title":       "Title must be between 3 and 100 characters",
	"UpdateTaskInput.Description": "Description must be between 1 and 500 characters",
	"UpdateTaskInput.Status":      "Invalid status",
	"UpdateTaskInput.Priority":    "Invalid priority",
	"AdminInput.Email":            "Please provide a valid email",
	"AdminInput.Password":         "Password must be at least 6 characters",
	"AdminInput.Name":             "Name must be between 2 and 50 characters",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and converts failures into
// a *core.ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &core.ValidationError{Fields: make([]core.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.StructNamespace()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out.Fields = append(out.Fields, core.FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
