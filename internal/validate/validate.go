// Package validate implements a declarative per-field rule engine. A Schema
// is declared once and applied to many request records; it is read-only after
// construction and safe for concurrent use.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FieldType constrains the shape of a field's value.
type FieldType int

const (
	TypeAny FieldType = iota
	TypeString
	TypeNumber
)

// Field is the rule-set for one named field. Zero values mean "not checked":
// a nil Pattern skips the pattern check, a nil MinLength skips the length
// check, and so on.
type Field struct {
	Name     string
	Required bool
	Type     FieldType

	MinLength *int
	MaxLength *int
	Min       *float64
	Max       *float64

	Pattern *regexp.Regexp
	// PatternMessage overrides the default message when Pattern fails.
	PatternMessage string

	// Custom runs after the built-in checks. A non-nil error's text is
	// reported verbatim as the field's message.
	Custom func(value any, record map[string]any) error

	Rule Rule
}

// Schema is an ordered list of field rule-sets. Errors are reported in
// field-declaration order, then in check order within a field.
type Schema struct {
	fields []Field
}

// NewSchema builds a schema from fields in declaration order.
func NewSchema(fields ...Field) *Schema {
	return &Schema{fields: fields}
}

// FieldError is one failed check on one field.
type FieldError struct {
	Field     string `json:"field"`
	Message   string `json:"message"`
	MessageTH string `json:"messageTH,omitempty"`
}

// Result is the outcome of validating one record. It is constructed fresh per
// request and never shared.
type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors"`
}

// Validate applies every field rule-set to record and accumulates errors.
// The record is typically the merge of body, query and path parameters.
func (s *Schema) Validate(record map[string]any) Result {
	var errs []FieldError

	for _, f := range s.fields {
		errs = append(errs, s.validateField(f, record)...)
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func (s *Schema) validateField(f Field, record map[string]any) []FieldError {
	value, present := record[f.Name]
	str := valueString(value)
	blank := !present || strings.TrimSpace(str) == ""

	if f.Required && blank {
		return []FieldError{{
			Field:     f.Name,
			Message:   fmt.Sprintf("%s is required", f.Name),
			MessageTH: fmt.Sprintf("กรุณากรอก %s", f.Name),
		}}
	}
	if blank {
		// Optional and absent: nothing else applies.
		return nil
	}

	if f.Type == TypeNumber {
		if _, ok := parseNumberValue(value); !ok {
			return []FieldError{{
				Field:     f.Name,
				Message:   fmt.Sprintf("%s must be a number", f.Name),
				MessageTH: fmt.Sprintf("%s ต้องเป็นตัวเลข", f.Name),
			}}
		}
	}
	if f.Type == TypeString {
		if _, ok := value.(string); !ok {
			return []FieldError{{
				Field:     f.Name,
				Message:   fmt.Sprintf("%s must be a string", f.Name),
				MessageTH: fmt.Sprintf("%s ต้องเป็นข้อความ", f.Name),
			}}
		}
	}

	var errs []FieldError
	appendErr := func(msg, msgTH string) {
		errs = append(errs, FieldError{Field: f.Name, Message: msg, MessageTH: msgTH})
	}

	length := utf8.RuneCountInString(str)
	if f.MinLength != nil && length < *f.MinLength {
		appendErr(
			fmt.Sprintf("%s must be at least %d characters", f.Name, *f.MinLength),
			fmt.Sprintf("%s ต้องมีอย่างน้อย %d ตัวอักษร", f.Name, *f.MinLength),
		)
	}
	if f.MaxLength != nil && length > *f.MaxLength {
		appendErr(
			fmt.Sprintf("%s must be at most %d characters", f.Name, *f.MaxLength),
			fmt.Sprintf("%s ต้องมีไม่เกิน %d ตัวอักษร", f.Name, *f.MaxLength),
		)
	}

	if f.Min != nil || f.Max != nil {
		if n, ok := parseNumberValue(value); ok {
			if f.Min != nil && n < *f.Min {
				appendErr(
					fmt.Sprintf("%s must be at least %v", f.Name, *f.Min),
					fmt.Sprintf("%s ต้องมีค่าอย่างน้อย %v", f.Name, *f.Min),
				)
			}
			if f.Max != nil && n > *f.Max {
				appendErr(
					fmt.Sprintf("%s must be at most %v", f.Name, *f.Max),
					fmt.Sprintf("%s ต้องมีค่าไม่เกิน %v", f.Name, *f.Max),
				)
			}
		}
	}

	if f.Pattern != nil && !f.Pattern.MatchString(str) {
		msg := f.PatternMessage
		if msg == "" {
			msg = fmt.Sprintf("%s has an invalid format", f.Name)
		}
		appendErr(msg, fmt.Sprintf("%s มีรูปแบบไม่ถูกต้อง", f.Name))
	}

	if f.Custom != nil {
		if err := f.Custom(value, record); err != nil {
			appendErr(err.Error(), "")
		}
	}

	if msg, msgTH, ok := f.Rule.check(str); !ok {
		appendErr(msg, msgTH)
	}

	return errs
}

// Merge folds sources into one record, later sources overwriting earlier
// ones. The caller decides precedence by argument order (body, then query,
// then path parameters).
func Merge(sources ...map[string]any) map[string]any {
	record := make(map[string]any)
	for _, src := range sources {
		for k, v := range src {
			record[k] = v
		}
	}
	return record
}

// valueString renders a value the way it would appear in a form field.
func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func parseNumberValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		return parseNumber(t)
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n, err == nil
}
