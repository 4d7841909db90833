package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks struct tags with go-playground/validator plus the shop's
// custom rules:
//
//	email_basic      local@domain.tld
//	phone_id         +62 or 0 followed by 8-12 digits
//	strong_password  at least 8 characters and strength score >= 3
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom tags registered. Field names in
// errors are taken from the json tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on empty tags or nil funcs.
	_ = v.RegisterValidation("email_basic", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("phone_id", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		return PasswordProblem(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return !IsBlank(fl.Field().String())
	})

	return &Validator{v: v}
}

// Struct validates s and returns *Errors keyed by json field name, or nil.
func (val *Validator) Struct(s any) *Errors {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	out := &Errors{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out.Add("_", err.Error())
		return out
	}
	for _, fe := range ve {
		out.Add(fe.Field(), fieldMessage(fe))
	}
	return out
}

// Validate satisfies echo.Validator.
func (val *Validator) Validate(i any) error {
	return val.Struct(i).Err()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email_basic", "email":
		return "must be a valid email"
	case "phone_id":
		return "must start with +62 or 0 followed by 8-12 digits"
	case "strong_password":
		return PasswordProblem(fmt.Sprint(fe.Value()))
	case "eqfield":
		return "does not match"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}
