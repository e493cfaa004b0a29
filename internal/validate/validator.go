// Package validate checks pet payloads against the catalog invariants:
// name non-empty, gender enumerated, weight non-negative. It wraps
// go-playground/validator with a custom gender tag.
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mesh-intelligence/pets/pkg/types"
)

// Field tags shared by Insert and Update.
const (
	tagName   = "required"
	tagGender = "gender"
	tagWeight = "gte=0"
)

// Validator wraps the go-playground validator.
type Validator struct {
	validate *validator.Validate
}

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
}

// ValidationErrors is a collection of rejected fields. It matches
// types.ErrInvalidPayload under errors.Is.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

// Is makes errors.Is(err, types.ErrInvalidPayload) hold.
func (v ValidationErrors) Is(target error) bool {
	return target == types.ErrInvalidPayload
}

// pet mirrors the constrained columns for whole-struct validation.
type pet struct {
	Name   string `json:"name" validate:"required"`
	Breed  string `json:"breed"`
	Gender int    `json:"gender" validate:"gender"`
	Weight int    `json:"weight" validate:"gte=0"`
}

// New creates a Validator with the gender tag registered.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// RegisterValidation only fails on an empty tag or a nil func.
	_ = v.RegisterValidation(tagGender, validateGender)

	return &Validator{validate: v}
}

// Insert checks every field. Absent gender and weight take their column
// defaults; an absent name is rejected. An empty payload returns
// types.ErrEmptyPayload.
func (v *Validator) Insert(values types.Values) error {
	if values.Len() == 0 {
		return types.ErrEmptyPayload
	}
	p := pet{Gender: int(types.GenderUnknown)}
	if values.Name != nil {
		p.Name = *values.Name
	}
	if values.Breed != nil {
		p.Breed = *values.Breed
	}
	if values.Gender != nil {
		p.Gender = int(*values.Gender)
	}
	if values.Weight != nil {
		p.Weight = *values.Weight
	}

	err := v.validate.Struct(p)
	if err == nil {
		return nil
	}
	return convert(err)
}

// Update checks only the fields present in values. An empty payload
// returns types.ErrEmptyPayload.
func (v *Validator) Update(values types.Values) error {
	if values.Len() == 0 {
		return types.ErrEmptyPayload
	}

	var errs ValidationErrors
	check := func(field string, value any, tag string) error {
		err := v.validate.Var(value, tag)
		if err == nil {
			return nil
		}
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, newValidationError(field, fe))
		}
		return nil
	}

	if values.Name != nil {
		if err := check(types.ColumnName, *values.Name, tagName); err != nil {
			return err
		}
	}
	if values.Gender != nil {
		if err := check(types.ColumnGender, int(*values.Gender), tagGender); err != nil {
			return err
		}
	}
	if values.Weight != nil {
		if err := check(types.ColumnWeight, *values.Weight, tagWeight); err != nil {
			return err
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// convert maps go-playground errors to ValidationErrors. Anything else is
// an invalid use of the validator and is returned wrapped.
func convert(err error) error {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate pet: %w", err)
	}
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, newValidationError(fe.Field(), fe))
	}
	return out
}

func newValidationError(field string, fe validator.FieldError) ValidationError {
	return ValidationError{
		Field:   field,
		Message: msgForTag(field, fe),
		Tag:     fe.Tag(),
		Value:   fmt.Sprintf("%v", fe.Value()),
	}
}

// msgForTag returns a human-readable message for a validation tag.
func msgForTag(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("pet requires a %s", field)
	case "gte":
		return fmt.Sprintf("pet %s cannot be negative: %v", field, fe.Value())
	case tagGender:
		return fmt.Sprintf("invalid pet gender: %v", fe.Value())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// validateGender accepts the three enumerated gender values.
func validateGender(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return types.Gender(fl.Field().Int()).Valid()
	default:
		return false
	}
}
