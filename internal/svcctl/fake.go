package svcctl

import (
	"context"
	"sync"
	"time"

	"confmerge/internal/model"
)

// FakeController is an in-memory Controller used by tests that must not
// touch the real init system. It honors the same polling success-predicate contract as
// SystemdController, so tests exercising grace-period timeouts behave
// the same against either implementation.
type FakeController struct {
	mu    sync.Mutex
	state map[string]model.ServiceState

	// FailStart/FailStop/FailRestart name services whose corresponding
	// operation must report failure regardless of the state transition,
	// used to simulate a failing restart for rollback tests.
	FailStart   map[string]bool
	FailStop    map[string]bool
	FailRestart map[string]bool

	// PollInterval overrides the default polling interval; tests set this
	// very small to avoid slow test runs.
	PollInterval time.Duration
}

// NewFakeController constructs a FakeController with every named service
// starting in model.StateRunning, matching a freshly-booted router.
func NewFakeController(initiallyRunning ...string) *FakeController {
	f := &FakeController{
		state:        make(map[string]model.ServiceState),
		FailStart:    make(map[string]bool),
		FailStop:     make(map[string]bool),
		FailRestart:  make(map[string]bool),
		PollInterval: time.Millisecond,
	}
	for _, s := range initiallyRunning {
		f.state[s] = model.StateRunning
	}
	return f
}

func (f *FakeController) Status(_ context.Context, service string) (model.ServiceState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.state[service]
	if !ok {
		return model.StateUnknown, nil
	}
	return state, nil
}

func (f *FakeController) setState(service string, state model.ServiceState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state[service] = state
}

func (f *FakeController) Start(ctx context.Context, service string, grace time.Duration) (model.ServiceOp, error) {
	current, _ := f.Status(ctx, service)
	if current == model.StateRunning {
		return model.ServiceOp{Service: service, FromState: current, ToState: model.StateRunning, Outcome: model.OutcomeOK, Detail: "already running"}, nil
	}

	if f.FailStart[service] {
		op := model.ServiceOp{Service: service, FromState: current, ToState: model.StateRunning, Outcome: model.OutcomeFail, Detail: "simulated start failure"}
		return op, errOp(op)
	}

	f.setState(service, model.StateRunning)
	final, ok := waitForState(ctx, grace, f.PollInterval, model.StateRunning, f.Status)
	if !ok {
		op := model.ServiceOp{Service: service, FromState: current, ToState: final, Outcome: model.OutcomeFail, Detail: "did not reach running within grace period"}
		return op, errOp(op)
	}
	return model.ServiceOp{Service: service, FromState: current, ToState: model.StateRunning, Outcome: model.OutcomeOK}, nil
}

func (f *FakeController) Stop(ctx context.Context, service string, grace time.Duration) (model.ServiceOp, error) {
	current, _ := f.Status(ctx, service)
	if current == model.StateStopped || current == model.StateUnknown {
		return model.ServiceOp{Service: service, FromState: current, ToState: model.StateStopped, Outcome: model.OutcomeOK, Detail: "already stopped"}, nil
	}

	if f.FailStop[service] {
		op := model.ServiceOp{Service: service, FromState: current, ToState: model.StateStopped, Outcome: model.OutcomeFail, Detail: "simulated stop failure"}
		return op, errOp(op)
	}

	f.setState(service, model.StateStopped)
	final, ok := waitForState(ctx, grace, f.PollInterval, model.StateStopped, f.Status)
	if !ok {
		op := model.ServiceOp{Service: service, FromState: current, ToState: final, Outcome: model.OutcomeFail, Detail: "did not reach stopped within grace period"}
		return op, errOp(op)
	}
	return model.ServiceOp{Service: service, FromState: current, ToState: model.StateStopped, Outcome: model.OutcomeOK}, nil
}

func (f *FakeController) Restart(ctx context.Context, service string, grace time.Duration) (model.ServiceOp, error) {
	current, _ := f.Status(ctx, service)

	if f.FailRestart[service] {
		op := model.ServiceOp{Service: service, FromState: current, ToState: model.StateRunning, Outcome: model.OutcomeFail, Detail: "simulated restart failure"}
		return op, errOp(op)
	}

	f.setState(service, model.StateStopped)
	f.setState(service, model.StateRunning)
	final, ok := waitForState(ctx, grace, f.PollInterval, model.StateRunning, f.Status)
	if !ok {
		op := model.ServiceOp{Service: service, FromState: current, ToState: final, Outcome: model.OutcomeFail, Detail: "did not reach running within grace period"}
		return op, errOp(op)
	}
	return model.ServiceOp{Service: service, FromState: current, ToState: model.StateRunning, Outcome: model.OutcomeOK}, nil
}

func errOp(op model.ServiceOp) error {
	return model.NewPackageError(model.CategoryRestartFailure, op.Service, op.Detail, nil)
}
