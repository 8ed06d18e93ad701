package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
)

// List errors
var (
	ErrLastItem        = errors.New("list must keep at least the minimum number of items")
	ErrIndexOutOfRange = errors.New("list index out of range")
	ErrFixedList       = errors.New("items cannot be added to or removed from this list")
)

// ListOps is the type-erased view of one list of sub-records inside a record T
type ListOps[T any] interface {
	Name() string
	Len(data *T) int
	Add(data *T) (int, error)
	Remove(data *T, index int) error
	Update(data *T, index int, field string, value json.RawMessage) error
}

// ListOption configures a list
type ListOption func(*listConfig)

type listConfig struct {
	fixed     bool
	protected []string
}

// Fixed forbids adding and removing items. Items can still be updated.
func Fixed() ListOption {
	return func(c *listConfig) { c.fixed = true }
}

// Protected lists item fields that Update refuses to touch
func Protected(fields ...string) ListOption {
	return func(c *listConfig) { c.protected = append(c.protected, fields...) }
}

type list[T, E any] struct {
	name  string
	min   int
	get   func(*T) *[]E
	blank func() E
	cfg   listConfig
}

// NewList describes the slice returned by get. Remove refuses to go below min items.
func NewList[T, E any](name string, min int, get func(*T) *[]E, blank func() E, opts ...ListOption) ListOps[T] {
	l := &list[T, E]{name: name, min: min, get: get, blank: blank}
	for _, opt := range opts {
		opt(&l.cfg)
	}
	return l
}

func (l *list[T, E]) Name() string {
	return l.name
}

func (l *list[T, E]) Len(data *T) int {
	return len(*l.get(data))
}

// Add appends a blank item and returns its index
func (l *list[T, E]) Add(data *T) (int, error) {
	if l.cfg.fixed {
		return 0, ErrFixedList
	}
	items := *l.get(data)
	next := make([]E, len(items), len(items)+1)
	copy(next, items)
	next = append(next, l.blank())
	*l.get(data) = next
	return len(next) - 1, nil
}

// Remove deletes the item at index
func (l *list[T, E]) Remove(data *T, index int) error {
	if l.cfg.fixed {
		return ErrFixedList
	}
	items := *l.get(data)
	if index < 0 || index >= len(items) {
		return ErrIndexOutOfRange
	}
	if len(items) <= l.min {
		return ErrLastItem
	}
	next := make([]E, 0, len(items)-1)
	next = append(next, items[:index]...)
	next = append(next, items[index+1:]...)
	*l.get(data) = next
	return nil
}

// Update replaces one field of the item at index with a new item in a new slice
func (l *list[T, E]) Update(data *T, index int, field string, value json.RawMessage) error {
	items := *l.get(data)
	if index < 0 || index >= len(items) {
		return ErrIndexOutOfRange
	}
	if contains(l.cfg.protected, field) {
		return &FieldError{Field: field, Err: ErrReadOnlyField}
	}

	item, err := SetField(items[index], field, value)
	if err != nil {
		return err
	}

	next := make([]E, len(items))
	copy(next, items)
	next[index] = item
	*l.get(data) = next
	return nil
}

// Lists is a name-indexed set of list descriptions
type Lists[T any] map[string]ListOps[T]

// NewLists indexes lists by name
func NewLists[T any](lists ...ListOps[T]) Lists[T] {
	out := make(Lists[T], len(lists))
	for _, l := range lists {
		out[l.Name()] = l
	}
	return out
}

// Lookup returns the named list
func (ls Lists[T]) Lookup(name string) (ListOps[T], error) {
	l, ok := ls[name]
	if !ok {
		return nil, fmt.Errorf("%w: list %q", ErrUnknownField, name)
	}
	return l, nil
}
