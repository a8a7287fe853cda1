package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports a data-model invariant violated at construction.
// Instances of the model types are never observable in a state that would
// produce one of these.
type ValidationError struct {
	Model string
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Model, e.Field, e.Msg)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkStruct runs tag-based validation and translates the first violation
// into a ValidationError carrying the json field name.
func checkStruct(model string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Model: model,
			Field: fe.Field(),
			Msg:   fmt.Sprintf("failed %q constraint", fe.Tag()),
		}
	}

	return fmt.Errorf("validate %s: %w", model, err)
}
