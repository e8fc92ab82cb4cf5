// Package workflow models the travel-application lifecycle as a guarded
// state machine. A Definition declares the edges once; each application gets
// its own Machine instance positioned at its persisted status.
package workflow

import (
	"context"
	"fmt"
	"sort"
)

// GuardFunc decides at fire time whether a guarded edge may be taken.
type GuardFunc func(ctx context.Context) bool

type edge struct {
	to    State
	guard GuardFunc
}

// Definition is the immutable edge table shared by machine instances.
type Definition struct {
	edges map[State]map[Trigger][]edge
}

// NewDefinition creates an empty lifecycle definition.
func NewDefinition() *Definition {
	return &Definition{edges: make(map[State]map[Trigger][]edge)}
}

// Edges is the fluent handle for declaring transitions out of one state.
type Edges struct {
	def  *Definition
	from State
}

// From starts declaring edges out of a state.
func (d *Definition) From(s State) *Edges {
	if !s.IsValid() {
		panic(fmt.Sprintf("workflow: unknown state %q", s))
	}
	if d.edges[s] == nil {
		d.edges[s] = make(map[Trigger][]edge)
	}
	return &Edges{def: d, from: s}
}

// On declares an unconditional edge.
func (e *Edges) On(t Trigger, to State) *Edges {
	return e.OnIf(t, to, nil)
}

// OnIf declares an edge taken only when the guard passes. Edges for the same
// trigger are tried in declaration order; the first admissible one wins.
func (e *Edges) OnIf(t Trigger, to State, guard GuardFunc) *Edges {
	if !to.IsValid() {
		panic(fmt.Sprintf("workflow: unknown target state %q", to))
	}
	e.def.edges[e.from][t] = append(e.def.edges[e.from][t], edge{to: to, guard: guard})
	return e
}

// Machine tracks the current state of one application.
type Machine struct {
	def     *Definition
	current State
}

// Start positions a machine at the given state.
func (d *Definition) Start(initial State) (*Machine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, initial)
	}
	return &Machine{def: d, current: initial}, nil
}

// State returns the current state.
func (m *Machine) State() State {
	return m.current
}

// CanFire reports whether the trigger has at least one edge out of the
// current state. Guards are not evaluated here.
func (m *Machine) CanFire(t Trigger) bool {
	return len(m.def.edges[m.current][t]) > 0
}

// Fire advances the machine along the first admissible edge for the trigger.
func (m *Machine) Fire(ctx context.Context, t Trigger) error {
	candidates := m.def.edges[m.current][t]
	if len(candidates) == 0 {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, t, m.current)
	}
	for _, e := range candidates {
		if e.guard == nil || e.guard(ctx) {
			m.current = e.to
			return nil
		}
	}
	return fmt.Errorf("%w: %s from %s", ErrGuardRejected, t, m.current)
}

// PermittedTriggers returns the triggers with at least one edge out of the
// current state, sorted for deterministic output.
func (m *Machine) PermittedTriggers() []Trigger {
	out := make([]Trigger, 0, len(m.def.edges[m.current]))
	for t := range m.def.edges[m.current] {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
