package tour

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/evcraddock/resa/internal/apperr"
	"github.com/evcraddock/resa/internal/clock"
)

// Validator checks input documents against the tag rules on Request and
// the ordering rules that tags cannot express. It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a Validator with the custom "clock" rule registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	if err := v.RegisterValidation("clock", validateClock); err != nil {
		panic(fmt.Sprintf("registering clock validation: %v", err))
	}
	return &Validator{v: v}
}

var defaultValidator = NewValidator()

// Validate checks req with the shared Validator. Call it on a normalized
// request.
func Validate(req *Request) error {
	return defaultValidator.Validate(req)
}

// Validate returns nil or every problem found in req, joined. Each problem
// is an *apperr.Error of KindValidation.
func (val *Validator) Validate(req *Request) error {
	var errs []error

	if err := val.v.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validating request: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, apperr.Validation(fieldPath(fe), describe(fe)))
		}
	}

	for i, p := range req.Properties {
		if p.Order != 0 && p.Order != i+1 {
			errs = append(errs, apperr.Validation(
				fmt.Sprintf("properties[%d].order", i),
				"is %d but the property is listed at position %d", p.Order, i+1,
			))
		}
	}

	return errors.Join(errs...)
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := clock.Parse(fl.Field().String())
	return err == nil
}

// jsonFieldName reports fields by their JSON names so error paths match the
// input document.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// fieldPath strips the root type name from the validator namespace,
// e.g. "Request.properties[0].address" becomes "properties[0].address".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return "must not be negative"
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "min":
		return fmt.Sprintf("must contain at least %s entry", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s, got %q", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "clock":
		return "must be a time of day such as 10:00 or 10:00 AM"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
