// Package statemachine provides a small transition-table state machine for
// status-bearing entities.
//
// Unlike a classic stateful machine, the Machine here holds no current
// state: entities persist their own status, and the machine answers whether
// a transition from that status is legal, running guards before approving.
// This keeps one shared Machine per entity type, safe for concurrent use
// after construction.
//
//	var events = statemachine.New(
//		statemachine.T(StatusDraft, StatusPublished, EventPublish),
//		statemachine.T(StatusPublished, StatusCompleted, EventComplete),
//	)
//
//	next, err := events.Transition(ctx, ev.Status, EventPublish, ev)
package statemachine
