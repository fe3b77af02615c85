// Package workflow holds the trip status lifecycle.
package workflow

import (
	"errors"
	"fmt"

	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
)

// State is a trip status
type State string

const (
	StateDraft     State = entity.TripStatusDraft
	StatePlanned   State = entity.TripStatusPlanned
	StateCompleted State = entity.TripStatusCompleted
)

// IsValid reports whether s is a known trip status
func (s State) IsValid() bool {
	switch s {
	case StateDraft, StatePlanned, StateCompleted:
		return true
	}
	return false
}

// Trigger is an event moving a trip between statuses
type Trigger string

const (
	TriggerPlan     Trigger = "plan"
	TriggerComplete Trigger = "complete"
	TriggerRevert   Trigger = "revert"
	TriggerReopen   Trigger = "reopen"
)

var (
	// ErrInvalidTransition is returned when no transition leads to the target status
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidState is returned for an unknown status
	ErrInvalidState = errors.New("invalid status")

	// ErrGuardFailed is returned when the trip does not satisfy the transition guard
	ErrGuardFailed = errors.New("transition guard failed")
)

// GuardFunc decides whether a transition may run for trip
type GuardFunc func(trip *entity.Trip) bool

type transition struct {
	trigger Trigger
	to      State
	guard   GuardFunc
}

// Lifecycle is an immutable set of permitted transitions
type Lifecycle struct {
	transitions map[State][]transition
}

// Builder configures a Lifecycle
type Builder struct {
	transitions map[State][]transition
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{transitions: make(map[State][]transition)}
}

// Permit allows trigger to move a trip from one status to another
func (b *Builder) Permit(from State, trigger Trigger, to State) *Builder {
	return b.PermitIf(from, trigger, to, nil)
}

// PermitIf is Permit with a guard. It panics on unknown states.
func (b *Builder) PermitIf(from State, trigger Trigger, to State, guard GuardFunc) *Builder {
	if !from.IsValid() || !to.IsValid() {
		panic(fmt.Sprintf("invalid transition %s -> %s", from, to))
	}
	b.transitions[from] = append(b.transitions[from], transition{trigger: trigger, to: to, guard: guard})
	return b
}

// Build returns a lifecycle independent of later builder changes
func (b *Builder) Build() *Lifecycle {
	copied := make(map[State][]transition, len(b.transitions))
	for from, ts := range b.transitions {
		copied[from] = append([]transition(nil), ts...)
	}
	return &Lifecycle{transitions: copied}
}

// TripLifecycle returns the standard trip lifecycle. A trip can only be
// planned once it has a destination and a duration.
func TripLifecycle() *Lifecycle {
	hasShape := func(trip *entity.Trip) bool {
		return trip.Destination != "" && trip.DurationDays > 0
	}
	return NewBuilder().
		PermitIf(StateDraft, TriggerPlan, StatePlanned, hasShape).
		Permit(StateDraft, TriggerComplete, StateCompleted).
		Permit(StatePlanned, TriggerComplete, StateCompleted).
		Permit(StatePlanned, TriggerRevert, StateDraft).
		Permit(StateCompleted, TriggerReopen, StatePlanned).
		Build()
}

// Triggers lists the triggers available from state, in configuration order
func (l *Lifecycle) Triggers(state State) []Trigger {
	ts := l.transitions[state]
	out := make([]Trigger, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.trigger)
	}
	return out
}

// Fire applies trigger to trip and updates its status
func (l *Lifecycle) Fire(trip *entity.Trip, trigger Trigger) error {
	from := State(trip.Status)
	for _, t := range l.transitions[from] {
		if t.trigger != trigger {
			continue
		}
		if t.guard != nil && !t.guard(trip) {
			return fmt.Errorf("%w: %s from %s", ErrGuardFailed, trigger, from)
		}
		trip.Status = string(t.to)
		return nil
	}
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, from)
}

// MoveTo moves trip to target through the first transition leading there.
// Moving to the current status is a no-op.
func (l *Lifecycle) MoveTo(trip *entity.Trip, target State) error {
	if !target.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidState, target)
	}
	from := State(trip.Status)
	if from == target {
		return nil
	}
	for _, t := range l.transitions[from] {
		if t.to == target {
			return l.Fire(trip, t.trigger)
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, target)
}
