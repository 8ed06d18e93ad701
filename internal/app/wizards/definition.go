// Package wizards defines the concrete wizard flows (instructor registration, course authoring
// and admin application review) and exposes them behind a type-erased Definition so that
// sessions can carry their form record as raw JSON.
package wizards

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
	"github.com/yigit/skillmart/internal/pkg/wizard"
)

// SlotRef addresses one upload slot inside a form record
type SlotRef struct {
	Name     string `json:"name"`
	Index    int    `json:"index"`
	SubIndex int    `json:"subIndex"`
}

// Key is the pending-upload key of the slot
func (r SlotRef) Key() string {
	return fmt.Sprintf("%s:%d:%d", r.Name, r.Index, r.SubIndex)
}

// ParseSlotKey is the inverse of SlotRef.Key
func ParseSlotKey(key string) (SlotRef, bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		return SlotRef{}, false
	}
	idx, err1 := strconv.Atoi(parts[1])
	sub, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return SlotRef{}, false
	}
	return SlotRef{Name: parts[0], Index: idx, SubIndex: sub}, true
}

// SlotDef describes an upload slot. List names the list whose items own the slot and
// Field the item field holding a nested list of slots, addressed by SubIndex.
type SlotDef struct {
	Name  string
	Kind  models.UploadKind
	List  string
	Field string
}

// Definition is one wizard flow operating on a raw JSON form record
type Definition interface {
	Kind() models.WizardKind
	TotalSteps() int
	Blank() json.RawMessage
	Steps(form json.RawMessage) ([]wizard.StepState, error)
	Navigate(form json.RawMessage, current, target int) (wizard.Decision, error)
	CanSubmit(form json.RawMessage, current int) (wizard.Decision, error)

	Merge(form, partial json.RawMessage) (json.RawMessage, error)
	AddItem(form json.RawMessage, list string) (json.RawMessage, int, error)
	RemoveItem(form json.RawMessage, list string, index int) (json.RawMessage, error)
	UpdateItem(form json.RawMessage, list string, index int, field string, value json.RawMessage) (json.RawMessage, error)

	Slot(name string) (SlotDef, bool)
	SetSlot(form json.RawMessage, ref SlotRef, result models.UploadResult) (json.RawMessage, bool, error)
	ClearSlot(form json.RawMessage, ref SlotRef) (json.RawMessage, error)

	// ReviewStep is the 1-based AI review step or 0 when the flow has none
	ReviewStep() int
	Review(form json.RawMessage) (models.AIReview, error)
	ReviewRequest(form json.RawMessage) (models.AIProfileReviewRequest, error)
	SetReview(form json.RawMessage, review models.AIReview) (json.RawMessage, error)
}

// RemovalBlocked reports whether removing item index of list would orphan a pending upload
func RemovalBlocked(def Definition, list string, index int, pending []string) bool {
	for _, key := range pending {
		ref, ok := ParseSlotKey(key)
		if !ok {
			continue
		}
		sd, ok := def.Slot(ref.Name)
		if ok && sd.List == list && ref.Index == index {
			return true
		}
	}
	return false
}

// UpdateBlocked reports whether replacing field of item index of list would move or drop
// a pending upload held in a nested list of that item
func UpdateBlocked(def Definition, list string, index int, field string, pending []string) bool {
	for _, key := range pending {
		ref, ok := ParseSlotKey(key)
		if !ok {
			continue
		}
		sd, ok := def.Slot(ref.Name)
		if ok && sd.Field != "" && sd.List == list && sd.Field == field && ref.Index == index {
			return true
		}
	}
	return false
}

type slot[T any] struct {
	def   SlotDef
	set   func(data *T, ref SlotRef, result models.UploadResult) bool
	clear func(data *T, ref SlotRef)
}

type review[T any] struct {
	step    int
	get     func(data *T) models.AIReview
	set     func(data *T, r models.AIReview)
	request func(data *T) models.AIProfileReviewRequest
}

type definition[T any] struct {
	kind     models.WizardKind
	flow     *wizard.Flow[T]
	lists    wizard.Lists[T]
	readOnly []string
	blank    func() T
	slots    map[string]slot[T]
	review   *review[T]
	// guard checks a mutated record against the stored one
	guard    func(prev, next *T) error
}

func (d *definition[T]) Kind() models.WizardKind {
	return d.kind
}

func (d *definition[T]) TotalSteps() int {
	return d.flow.Total()
}

func (d *definition[T]) Blank() json.RawMessage {
	data := d.blank()
	raw, _ := json.Marshal(&data)
	return raw
}

func (d *definition[T]) decode(form json.RawMessage) (*T, error) {
	data := d.blank()
	if len(form) == 0 {
		return &data, nil
	}
	if err := json.Unmarshal(form, &data); err != nil {
		return nil, fmt.Errorf("decode %s form: %w", d.kind, err)
	}
	return &data, nil
}

func (d *definition[T]) encode(data *T) (json.RawMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s form: %w", d.kind, err)
	}
	return raw, nil
}

func (d *definition[T]) Steps(form json.RawMessage) ([]wizard.StepState, error) {
	data, err := d.decode(form)
	if err != nil {
		return nil, err
	}
	return d.flow.States(data), nil
}

func (d *definition[T]) Navigate(form json.RawMessage, current, target int) (wizard.Decision, error) {
	data, err := d.decode(form)
	if err != nil {
		return wizard.Decision{}, err
	}
	return d.flow.GoTo(data, current, target), nil
}

func (d *definition[T]) CanSubmit(form json.RawMessage, current int) (wizard.Decision, error) {
	data, err := d.decode(form)
	if err != nil {
		return wizard.Decision{}, err
	}
	return d.flow.CanSubmit(data, current), nil
}

func (d *definition[T]) Merge(form, partial json.RawMessage) (json.RawMessage, error) {
	data, err := d.decode(form)
	if err != nil {
		return nil, err
	}
	if err := wizard.Merge(data, partial, d.readOnly...); err != nil {
		return nil, mutationError(err)
	}
	if err := d.check(form, data); err != nil {
		return nil, err
	}
	return d.encode(data)
}

func (d *definition[T]) AddItem(form json.RawMessage, list string) (json.RawMessage, int, error) {
	data, ops, err := d.withList(form, list)
	if err != nil {
		return nil, 0, err
	}
	index, err := ops.Add(data)
	if err != nil {
		return nil, 0, mutationError(err)
	}
	raw, err := d.encode(data)
	return raw, index, err
}

func (d *definition[T]) RemoveItem(form json.RawMessage, list string, index int) (json.RawMessage, error) {
	data, ops, err := d.withList(form, list)
	if err != nil {
		return nil, err
	}
	if err := ops.Remove(data, index); err != nil {
		return nil, mutationError(err)
	}
	return d.encode(data)
}

func (d *definition[T]) UpdateItem(form json.RawMessage, list string, index int, field string, value json.RawMessage) (json.RawMessage, error) {
	data, ops, err := d.withList(form, list)
	if err != nil {
		return nil, err
	}
	if err := ops.Update(data, index, field, value); err != nil {
		return nil, mutationError(err)
	}
	if err := d.check(form, data); err != nil {
		return nil, err
	}
	return d.encode(data)
}

func (d *definition[T]) check(form json.RawMessage, next *T) error {
	if d.guard == nil {
		return nil
	}
	prev, err := d.decode(form)
	if err != nil {
		return err
	}
	if err := d.guard(prev, next); err != nil {
		return mutationError(err)
	}
	return nil
}

func (d *definition[T]) withList(form json.RawMessage, list string) (*T, wizard.ListOps[T], error) {
	ops, err := d.lists.Lookup(list)
	if err != nil {
		return nil, nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("%s wizard has no list %q", d.kind, list))
	}
	data, err := d.decode(form)
	if err != nil {
		return nil, nil, err
	}
	return data, ops, nil
}

func (d *definition[T]) Slot(name string) (SlotDef, bool) {
	s, ok := d.slots[name]
	return s.def, ok
}

// SetSlot stores an upload result. It reports false when the slot no longer exists,
// for example because the owning list item was removed.
func (d *definition[T]) SetSlot(form json.RawMessage, ref SlotRef, result models.UploadResult) (json.RawMessage, bool, error) {
	s, ok := d.slots[ref.Name]
	if !ok {
		return nil, false, apperrors.NewResourceNotFoundError(fmt.Sprintf("%s wizard has no upload slot %q", d.kind, ref.Name))
	}
	data, err := d.decode(form)
	if err != nil {
		return nil, false, err
	}
	if !s.set(data, ref, result) {
		return form, false, nil
	}
	raw, err := d.encode(data)
	return raw, err == nil, err
}

func (d *definition[T]) ClearSlot(form json.RawMessage, ref SlotRef) (json.RawMessage, error) {
	s, ok := d.slots[ref.Name]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("%s wizard has no upload slot %q", d.kind, ref.Name))
	}
	data, err := d.decode(form)
	if err != nil {
		return nil, err
	}
	s.clear(data, ref)
	return d.encode(data)
}

func (d *definition[T]) ReviewStep() int {
	if d.review == nil {
		return 0
	}
	return d.review.step
}

func (d *definition[T]) Review(form json.RawMessage) (models.AIReview, error) {
	if d.review == nil {
		return models.AIReview{}, apperrors.ErrReviewNotAvailable
	}
	data, err := d.decode(form)
	if err != nil {
		return models.AIReview{}, err
	}
	r := d.review.get(data)
	if r.State == "" {
		r.State = models.AIReviewNone
	}
	return r, nil
}

func (d *definition[T]) ReviewRequest(form json.RawMessage) (models.AIProfileReviewRequest, error) {
	if d.review == nil {
		return models.AIProfileReviewRequest{}, apperrors.ErrReviewNotAvailable
	}
	data, err := d.decode(form)
	if err != nil {
		return models.AIProfileReviewRequest{}, err
	}
	return d.review.request(data), nil
}

func (d *definition[T]) SetReview(form json.RawMessage, r models.AIReview) (json.RawMessage, error) {
	if d.review == nil {
		return nil, apperrors.ErrReviewNotAvailable
	}
	data, err := d.decode(form)
	if err != nil {
		return nil, err
	}
	d.review.set(data, r)
	return d.encode(data)
}

// mutationError turns wizard package errors into bad requests carrying a user message
func mutationError(err error) error {
	var fe *wizard.FieldError
	switch {
	case errors.As(err, &fe):
		return apperrors.NewCustomError(apperrors.ErrBadRequest, fe.Error()).WithField(fe.Field)
	case apperrors.Is(err, wizard.ErrNotAnObject, wizard.ErrUnknownField, wizard.ErrInvalidValue,
		wizard.ErrLastItem, wizard.ErrIndexOutOfRange, wizard.ErrFixedList):
		return apperrors.NewCustomError(apperrors.ErrBadRequest, err.Error())
	default:
		return err
	}
}

// Registry resolves wizard definitions by kind
type Registry struct {
	defs map[models.WizardKind]Definition
}

// NewRegistry returns a registry holding every wizard flow
func NewRegistry() *Registry {
	return &Registry{defs: map[models.WizardKind]Definition{
		models.WizardRegistration:      NewRegistration(),
		models.WizardCourse:            NewCourse(),
		models.WizardApplicationReview: NewApplicationReview(),
	}}
}

// Lookup returns the definition of kind
func (r *Registry) Lookup(kind models.WizardKind) (Definition, error) {
	def, ok := r.defs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownWizard, kind)
	}
	return def, nil
}
