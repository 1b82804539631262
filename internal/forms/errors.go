package forms

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yukikurage/crm-api/internal/models"
)

// NonFieldErrors is the key for errors not tied to one field.
const NonFieldErrors = "__all__"

// Errors maps a field path to its message.
type Errors map[string]string

// Add records msg for field, keeping the first message per field.
func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// Merge copies other into e, prefixing every key.
func (e Errors) Merge(prefix string, other Errors) {
	for field, msg := range other {
		if prefix != "" {
			field = prefix + "." + field
		}
		e.Add(field, msg)
	}
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

// Err returns nil when e is empty and a *ValidationError otherwise.
func (e Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return &ValidationError{Fields: e}
}

// ValidationError carries field-level messages back to the caller.
type ValidationError struct {
	Fields Errors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldError builds a single-field validation error.
func FieldError(field, msg string) error {
	return &ValidationError{Fields: Errors{field: msg}}
}

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

	// channel and grade follow the model's own rules
	_ = v.RegisterValidation("channel", func(fl validator.FieldLevel) bool {
		return models.Channel(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		return models.ValidGrade(int(fl.Field().Int()))
	})
	return v
}

// Struct runs the `validate` tags of v and converts failures into Errors.
func Struct(v any) Errors {
	errs := Errors{}
	err := validate.Struct(v)
	if err == nil {
		return errs
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add(NonFieldErrors, err.Error())
		return errs
	}

	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min", "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "len":
		return fmt.Sprintf("Ensure this value has exactly %s characters.", fe.Param())
	case "numeric":
		return "Enter digits only."
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return "Select a valid choice."
	case "channel":
		return fmt.Sprintf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	case "grade":
		if grade, ok := fe.Value().(int); ok && grade < models.MinGrade {
			return fmt.Sprintf("Ensure this value is greater than or equal to %d.", models.MinGrade)
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %d.", models.MaxGrade)
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}
