package wizard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Mutation errors
var (
	ErrNotAnObject   = errors.New("partial update must be a JSON object")
	ErrUnknownField  = errors.New("unknown field")
	ErrReadOnlyField = errors.New("field cannot be changed directly")
	ErrInvalidValue  = errors.New("invalid field value")
)

// FieldError reports which field a mutation error refers to
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Merge shallow-merges the top-level keys of partial into data.
// Nested objects and arrays are replaced wholesale; nothing is validated here.
// Keys listed in readOnly and keys that T does not serialize are rejected.
func Merge[T any](data *T, partial json.RawMessage, readOnly ...string) error {
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(partial, &patch); err != nil || patch == nil {
		return ErrNotAnObject
	}

	current, err := toFields(data)
	if err != nil {
		return err
	}

	for key, value := range patch {
		if contains(readOnly, key) {
			return &FieldError{Field: key, Err: ErrReadOnlyField}
		}
		if _, ok := current[key]; !ok {
			return &FieldError{Field: key, Err: ErrUnknownField}
		}
		current[key] = value
	}

	// decode into a fresh record so replaced arrays do not reuse old backing storage
	var next T
	if err := decodeFields(current, &next); err != nil {
		return err
	}
	*data = next
	return nil
}

// SetField returns a copy of item with one JSON field replaced
func SetField[E any](item E, field string, value json.RawMessage) (E, error) {
	var zero E

	fields, err := toFields(&item)
	if err != nil {
		return zero, err
	}
	if _, ok := fields[field]; !ok {
		return zero, &FieldError{Field: field, Err: ErrUnknownField}
	}
	fields[field] = value

	var next E
	if err := decodeFields(fields, &next); err != nil {
		return zero, &FieldError{Field: field, Err: ErrInvalidValue}
	}
	return next, nil
}

func toFields(v interface{}) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("record is not an object: %w", err)
	}
	return fields, nil
}

func decodeFields(fields map[string]json.RawMessage, out interface{}) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &FieldError{Field: typeErr.Field, Err: ErrInvalidValue}
		}
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
