package record

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a validation failure.
type Kind string

const (
	KindMissingField         Kind = "missing_field"
	KindEmptyRequiredText    Kind = "empty_required_text"
	KindInvalidEnumValue     Kind = "invalid_enum_value"
	KindIncompatibleActivity Kind = "incompatible_activity_for_media"
	KindInvalidPrice         Kind = "invalid_price"
	KindInvalidDate          Kind = "invalid_date"
	KindInvalidDateRange     Kind = "invalid_date_range"
	KindInvalidType          Kind = "invalid_type"
)

var (
	ErrMissingField         = errors.New("missing required field")
	ErrEmptyRequiredText    = errors.New("empty required text")
	ErrInvalidEnumValue     = errors.New("invalid enum value")
	ErrIncompatibleActivity = errors.New("activity type incompatible with media type")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidDateRange     = errors.New("invalid date range")
	ErrInvalidType          = errors.New("invalid field type")
)

var sentinels = map[Kind]error{
	KindMissingField:         ErrMissingField,
	KindEmptyRequiredText:    ErrEmptyRequiredText,
	KindInvalidEnumValue:     ErrInvalidEnumValue,
	KindIncompatibleActivity: ErrIncompatibleActivity,
	KindInvalidPrice:         ErrInvalidPrice,
	KindInvalidDate:          ErrInvalidDate,
	KindInvalidDateRange:     ErrInvalidDateRange,
	KindInvalidType:          ErrInvalidType,
}

// FieldError describes one violation on one field.
type FieldError struct {
	Kind    Kind   `json:"kind"`
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// Unwrap exposes the sentinel for the error's kind.
func (e *FieldError) Unwrap() error {
	return sentinels[e.Kind]
}

// ValidationErrors accumulates every violation found while building one record.
type ValidationErrors []*FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, e := range v {
		errs = append(errs, e)
	}
	return errs
}

// Fields returns the names of the offending fields in report order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, e := range v {
		fields = append(fields, e.Field)
	}
	return fields
}

// collector gathers field errors during a single construction.
type collector struct {
	errs ValidationErrors
}

func (c *collector) add(kind Kind, field string, value any, format string, args ...any) {
	c.errs = append(c.errs, &FieldError{
		Kind:    kind,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *collector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

// ItemFailure holds the violations of one rejected menu item.
type ItemFailure struct {
	Index  int              `json:"index"`
	Errors ValidationErrors `json:"errors"`
}

// PartialValidationError reports the menu items dropped during construction.
// The MenuRecord returned alongside it still holds every valid item.
type PartialValidationError struct {
	Failures []ItemFailure `json:"failures"`
}

func (p *PartialValidationError) Error() string {
	parts := make([]string, 0, len(p.Failures))
	for _, f := range p.Failures {
		parts = append(parts, fmt.Sprintf("item %d: %s", f.Index, f.Errors.Error()))
	}
	return fmt.Sprintf("%d menu item(s) rejected: %s", len(p.Failures), strings.Join(parts, "; "))
}

func (p *PartialValidationError) Unwrap() []error {
	errs := make([]error, 0, len(p.Failures))
	for _, f := range p.Failures {
		errs = append(errs, f.Errors)
	}
	return errs
}
