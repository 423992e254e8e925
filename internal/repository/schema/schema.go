// Package schema is the write-path step shared by every event store. It applies
// the field setters (trim, lowercase), evaluates the declared constraints and
// runs the normalizer, in that order, immediately before a record is written.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"

	"devevents/internal/domain"
	"devevents/internal/normalize"
)

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
	if err := v.RegisterValidation("maxlength", maxLength); err != nil {
		panic(err)
	}
	return v
}

// maxLength limits a string to param UTF-16 code units, so a character outside
// the Basic Multilingual Plane counts twice.
func maxLength(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf16Len(fl.Field().String()) <= limit
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// BeforeSave prepares e for a write. changed is the set of fields modified since
// the last persisted version, or domain.AllFields for a new record.
func BeforeSave(e *domain.Event, changed domain.FieldSet) error {
	applySetters(e)
	if err := Validate(e); err != nil {
		return err
	}
	return normalize.Event(e, changed)
}

// Validate evaluates the declared field constraints and returns a
// *domain.ConstraintViolation listing every failure.
func Validate(e *domain.Event) error {
	err := validate.Struct(e)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate event: %w", err)
	}
	cv := &domain.ConstraintViolation{}
	for _, fe := range verrs {
		cv.Violations = append(cv.Violations, domain.FieldViolation{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Msg:   message(fe),
		})
	}
	return cv
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "maxlength":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must contain at least " + fe.Param() + " entry"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "failed " + fe.Tag()
}

func applySetters(e *domain.Event) {
	e.Title = normalize.TrimSpace(e.Title)
	e.Slug = strings.ToLower(normalize.TrimSpace(e.Slug))
	e.Description = normalize.TrimSpace(e.Description)
	e.Overview = normalize.TrimSpace(e.Overview)
	e.Image = normalize.TrimSpace(e.Image)
	e.Venue = normalize.TrimSpace(e.Venue)
	e.Location = normalize.TrimSpace(e.Location)
	e.Audience = normalize.TrimSpace(e.Audience)
	e.Organizer = normalize.TrimSpace(e.Organizer)
}
