package event

import (
	"context"
	"time"

	"github.com/dmitrymomot/eventkit/pkg/statemachine"
)

// Lifecycle triggers.
const (
	triggerPublish  = statemachine.StringEvent("publish")
	triggerComplete = statemachine.StringEvent("complete")
	triggerCancel   = statemachine.StringEvent("cancel")
)

// newLifecycle builds the event transition table. COMPLETED and CANCELLED
// are terminal: no row leads out of them. Publishing is guarded by the
// start-time check.
func newLifecycle(now func() time.Time) *statemachine.Machine {
	publishGuard := func(ctx context.Context, from statemachine.State, trigger statemachine.Event, subject any) error {
		ev, ok := subject.(Event)
		if !ok {
			return ErrInvalidTransition
		}
		if !ev.StartsAt.After(now()) {
			return ErrStartTimeInPast
		}
		return nil
	}

	return statemachine.New(
		statemachine.T(StatusDraft, StatusPublished, triggerPublish, publishGuard),
		statemachine.T(StatusPublished, StatusCompleted, triggerComplete),
		statemachine.T(StatusDraft, StatusCancelled, triggerCancel),
		statemachine.T(StatusPublished, StatusCancelled, triggerCancel),
	)
}
