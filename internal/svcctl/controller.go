// Package svcctl implements the Service Controller: start/stop/restart/
// status operations against the host's init system, with a bounded
// grace-period success predicate and a per-operation undo log entry.
package svcctl

import (
	"context"
	"time"

	"confmerge/internal/model"
)

// Controller executes lifecycle operations on a named service. Start,
// Stop and Restart each return the ServiceOp they recorded alongside any
// error; a non-nil error always corresponds to an Outcome of
// model.OutcomeFail in the returned ServiceOp.
type Controller interface {
	Status(ctx context.Context, service string) (model.ServiceState, error)
	Start(ctx context.Context, service string, grace time.Duration) (model.ServiceOp, error)
	Stop(ctx context.Context, service string, grace time.Duration) (model.ServiceOp, error)
	Restart(ctx context.Context, service string, grace time.Duration) (model.ServiceOp, error)
}

// waitForState polls statusFn every interval until it reports want,
// ctx is done, or the deadline implied by grace elapses, whichever comes
// first. It returns the last observed state and whether want was
// reached in time. Exit status of the operation that triggered the wait
// is never sufficient on its own — only this predicate is.
func waitForState(ctx context.Context, grace, interval time.Duration, want model.ServiceState, statusFn func(context.Context) (model.ServiceState, error)) (model.ServiceState, bool) {
	deadline := time.Now().Add(grace)
	last := model.StateUnknown

	for {
		state, err := statusFn(ctx)
		if err == nil {
			last = state
			if state == want {
				return last, true
			}
		}

		if time.Now().After(deadline) {
			return last, false
		}
		select {
		case <-ctx.Done():
			return last, false
		case <-time.After(interval):
		}
	}
}
