package statemachine

import "context"

// State is a named state. Domain status types implement it by returning
// their string form.
type State interface {
	Name() string
}

// Event is a named trigger for a state transition.
type Event interface {
	Name() string
}

// Guard evaluates whether a transition is allowed for the given subject.
// Returning an error vetoes the transition and is surfaced to the caller
// unchanged, so guards can return domain-specific errors.
type Guard func(ctx context.Context, from State, event Event, subject any) error

// Transition is one row of the transition table.
type Transition struct {
	From   State
	To     State
	Event  Event
	Guards []Guard
}

// T builds a transition row with optional guards.
func T(from, to State, event Event, guards ...Guard) Transition {
	return Transition{From: from, To: to, Event: event, Guards: guards}
}

// Machine is an immutable transition table indexed by [fromState][event].
// Safe for concurrent use after New returns.
type Machine struct {
	transitions map[string]map[string]Transition
}

// New builds a machine from transition rows. Later rows for the same
// from/event pair replace earlier ones.
func New(transitions ...Transition) *Machine {
	m := &Machine{transitions: make(map[string]map[string]Transition)}
	for _, tr := range transitions {
		if tr.From == nil || tr.To == nil || tr.Event == nil {
			continue
		}
		from := tr.From.Name()
		if m.transitions[from] == nil {
			m.transitions[from] = make(map[string]Transition)
		}
		m.transitions[from][tr.Event.Name()] = tr
	}
	return m
}

// Transition returns the target state for firing event from the given state,
// after all guards pass. Returns ErrNoTransitionAvailable when the table has
// no row for the pair, or the guard's own error when one vetoes.
func (m *Machine) Transition(ctx context.Context, from State, event Event, subject any) (State, error) {
	if from == nil || event == nil {
		return nil, ErrInvalidTransition
	}

	byEvent, ok := m.transitions[from.Name()]
	if !ok {
		return nil, NewErrNoTransitionAvailable(from.Name(), event.Name())
	}
	tr, ok := byEvent[event.Name()]
	if !ok {
		return nil, NewErrNoTransitionAvailable(from.Name(), event.Name())
	}

	for _, guard := range tr.Guards {
		if guard == nil {
			continue
		}
		if err := guard(ctx, from, event, subject); err != nil {
			return nil, err
		}
	}
	return tr.To, nil
}

// Can reports whether the transition would be allowed, swallowing the
// specific reason.
func (m *Machine) Can(ctx context.Context, from State, event Event, subject any) bool {
	_, err := m.Transition(ctx, from, event, subject)
	return err == nil
}

// StringState provides a simple string-based State implementation.
type StringState string

func (s StringState) Name() string {
	return string(s)
}

// StringEvent provides a simple string-based Event implementation.
type StringEvent string

func (e StringEvent) Name() string {
	return string(e)
}
