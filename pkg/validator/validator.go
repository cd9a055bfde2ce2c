package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	ErrInvalidFormat      = "Invalid format"
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrFieldExceedsMaxVal = "Field exceeds maximum value"
	ErrFieldBelowMinVal   = "Field is below minimum value"
	ErrUnknownValidation  = "Unknown validation error"
)

// Leader is implemented by list entries that may be flagged as the team lead.
type Leader interface {
	IsLead() bool
}

// Addressed is implemented by list entries carrying an email address.
type Addressed interface {
	EmailAddress() string
}

// Register adds the custom tags to v:
//   - onelead: a slice of Leader has exactly one lead
//   - uniqueemail: a slice of Addressed has no repeated address (case-insensitive)
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("onelead", validateOneLead); err != nil {
		return fmt.Errorf("register onelead: %w", err)
	}
	if err := v.RegisterValidation("uniqueemail", validateUniqueEmail); err != nil {
		return fmt.Errorf("register uniqueemail: %w", err)
	}
	return nil
}

// RegisterWithGin installs the custom tags on gin's default binding validator.
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return Register(v)
}

func validateOneLead(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.Slice {
		return false
	}
	leads := 0
	for i := 0; i < f.Len(); i++ {
		if l, ok := f.Index(i).Interface().(Leader); ok && l.IsLead() {
			leads++
		}
	}
	return leads == 1
}

func validateUniqueEmail(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.Slice {
		return false
	}
	seen := make(map[string]struct{}, f.Len())
	for i := 0; i < f.Len(); i++ {
		a, ok := f.Index(i).Interface().(Addressed)
		if !ok {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(a.EmailAddress()))
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

// Message turns a binding error into a short client-facing message.
// Validation failures report the first failing field; decode errors pass through.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return "Invalid request body: " + err.Error()
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required", "required_if":
		msg = ErrFieldRequired
	case "email", "oneof", "eqfield":
		msg = ErrInvalidFormat
	case "max":
		msg = ErrFieldExceedsMaxLen
	case "min":
		msg = ErrFieldBelowMinLen
	case "lt", "lte":
		msg = ErrFieldExceedsMaxVal
	case "gt", "gte":
		msg = ErrFieldBelowMinVal
	case "onelead":
		msg = "Exactly one lead is required"
	case "uniqueemail":
		msg = "Email addresses must be unique"
	default:
		msg = ErrUnknownValidation
	}
	return msg + ": " + ve.Namespace()
}
