// Package wizard implements linear multi-step form flows: an ordered step registry,
// per-step validity predicates and the navigation gate that decides whether the
// current step pointer may move.
//
// Steps are 1-based. Validity is always derived from the form record and never stored.
package wizard

import "fmt"

// Step is one named step of a flow. Valid must be a pure function of the record.
type Step[T any] struct {
	Name  string
	Valid func(data *T) bool
}

// StepState is the derived view of a step for a given record
type StepState struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Valid bool   `json:"valid"`
}

// Decision is the outcome of a navigation or submission request.
// A rejected move is a normal result and never an error.
type Decision struct {
	Accepted bool   `json:"accepted"`
	From     int    `json:"from"`
	To       int    `json:"to"`
	Reason   string `json:"reason,omitempty"`
}

// Flow is an ordered step registry over records of type T
type Flow[T any] struct {
	steps []Step[T]
}

// NewFlow builds a flow from steps in order. It panics on an empty flow or a step
// without a predicate since both are programming errors.
func NewFlow[T any](steps ...Step[T]) *Flow[T] {
	if len(steps) == 0 {
		panic("wizard: flow needs at least one step")
	}
	for i, s := range steps {
		if s.Valid == nil {
			panic(fmt.Sprintf("wizard: step %d (%s) has no predicate", i+1, s.Name))
		}
	}
	return &Flow[T]{steps: steps}
}

// Total returns the number of steps
func (f *Flow[T]) Total() int {
	return len(f.steps)
}

// IndexOf returns the 1-based index of the named step or 0 when absent
func (f *Flow[T]) IndexOf(name string) int {
	for i, s := range f.steps {
		if s.Name == name {
			return i + 1
		}
	}
	return 0
}

// CanAdvance evaluates the predicate of the given step
func (f *Flow[T]) CanAdvance(data *T, step int) bool {
	if step < 1 || step > len(f.steps) {
		return false
	}
	return f.steps[step-1].Valid(data)
}

// States evaluates every step predicate against data
func (f *Flow[T]) States(data *T) []StepState {
	states := make([]StepState, len(f.steps))
	for i, s := range f.steps {
		states[i] = StepState{Index: i + 1, Name: s.Name, Valid: s.Valid(data)}
	}
	return states
}

// GoTo decides whether the pointer may move from current to target.
// Moving back is always allowed. Moving forward needs every step from current up to
// target-1 to be valid, which covers both the single step and the multi-step jump.
func (f *Flow[T]) GoTo(data *T, current, target int) Decision {
	d := Decision{From: current, To: current}

	switch {
	case target < 1 || target > len(f.steps):
		d.Reason = fmt.Sprintf("step %d does not exist", target)
		return d
	case target == current:
		d.Accepted = true
		return d
	case target < current:
		d.Accepted = true
		d.To = target
		return d
	}

	for step := current; step < target; step++ {
		if !f.steps[step-1].Valid(data) {
			d.Reason = fmt.Sprintf("step %d (%s) is incomplete", step, f.steps[step-1].Name)
			return d
		}
	}

	d.Accepted = true
	d.To = target
	return d
}

// Next is GoTo(current+1)
func (f *Flow[T]) Next(data *T, current int) Decision {
	if current >= len(f.steps) {
		return Decision{From: current, To: current, Reason: "already at the last step"}
	}
	return f.GoTo(data, current, current+1)
}

// Back is GoTo(current-1)
func (f *Flow[T]) Back(data *T, current int) Decision {
	if current <= 1 {
		return Decision{From: current, To: current, Reason: "already at the first step"}
	}
	return f.GoTo(data, current, current-1)
}

// CanSubmit reports whether the record may cross the persistence boundary:
// the pointer must sit on the terminal step and every predicate must hold.
func (f *Flow[T]) CanSubmit(data *T, current int) Decision {
	d := Decision{From: current, To: current}
	if current != len(f.steps) {
		d.Reason = "submission is only possible from the last step"
		return d
	}
	for i, s := range f.steps {
		if !s.Valid(data) {
			d.Reason = fmt.Sprintf("step %d (%s) is incomplete", i+1, s.Name)
			return d
		}
	}
	d.Accepted = true
	return d
}
