// Package service holds the business rules between the HTTP handlers and the
// repositories.
//
//	Handler (HTTP) → Service (validation, orchestration) → Repository (DB)
//	                                                     ↘ media.Store (images)
//
// Services take interfaces, validate input and return apperror values. They
// know nothing about HTTP.
//
// Write operations accept *Input structs whose fields are pointers: a nil
// field means "not supplied". Create requires the mandatory fields; Update
// only changes what was supplied.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/portfolio/internal/apperror"
)

// DateLayout is the calendar date format accepted alongside RFC 3339.
const DateLayout = "2006-01-02"

// parseDate accepts "2006-01-02" or RFC 3339.
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperror.ValidationFailed(field, field+" is required")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apperror.ValidationFailed(field,
		fmt.Sprintf("%s must be a date like 2024-01-31 or an RFC 3339 timestamp", field))
}

// parseOptionalDate treats an empty string as "no date".
func parseOptionalDate(field, s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// required trims s and fails when it is empty.
func required(field, label, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperror.ValidationFailed(field, label+" is required")
	}
	return s, nil
}

// set copies *src into *dst when src was supplied.
func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// setTrimmed is set for strings, trimming whitespace.
func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// FlexInt decodes from a JSON number or a numeric string. Admin forms post
// the general skill order as text.
type FlexInt int

// UnmarshalJSON accepts 3, "3" and "" (as 0).
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("order must be a whole number, got %q", s)
		}
		*f = FlexInt(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("order must be a whole number")
	}
	*f = FlexInt(n)
	return nil
}

// Nullable is an input field that tells "not supplied" apart from an
// explicit JSON null. Set is true when the key was present; Valid is false
// when its value was null.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some returns a supplied, non-null value.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

// Null returns a supplied null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// UnmarshalJSON is only called when the key is present, null included.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// applyEndDate clears the end date on null or "" and parses anything else.
// An absent field leaves it untouched.
func applyEndDate(dst **time.Time, in Nullable[string]) error {
	if !in.Set {
		return nil
	}
	if !in.Valid {
		*dst = nil
		return nil
	}
	end, err := parseOptionalDate("endDate", in.Value)
	if err != nil {
		return err
	}
	*dst = end
	return nil
}
