package svcctl

import (
	"context"
	"fmt"
	"time"

	"confmerge/internal/model"

	"confmerge/pkg/logging"

	"github.com/coreos/go-systemd/v22/dbus"
)

const subsystem = "ServiceController"

// defaultPollInterval is how often SystemdController polls unit state
// while waiting for the grace-period success predicate.
const defaultPollInterval = 200 * time.Millisecond

// unitSuffix is appended to a bare service name to form the systemd unit
// name, matching how router init scripts are typically wrapped as
// systemd services.
const unitSuffix = ".service"

// SystemdController drives services through the host's systemd instance
// over D-Bus.
type SystemdController struct {
	dial func(ctx context.Context) (*dbus.Conn, error)
}

// NewSystemdController constructs a SystemdController that connects to
// the system bus on demand for each operation.
func NewSystemdController() *SystemdController {
	return &SystemdController{dial: dbus.NewSystemConnectionContext}
}

func unitName(service string) string {
	return service + unitSuffix
}

func (c *SystemdController) conn(ctx context.Context) (*dbus.Conn, error) {
	return c.dial(ctx)
}

func activeStateToServiceState(active string) model.ServiceState {
	switch active {
	case "active", "activating", "reloading":
		return model.StateRunning
	case "inactive", "failed", "deactivating":
		return model.StateStopped
	default:
		return model.StateUnknown
	}
}

func (c *SystemdController) Status(ctx context.Context, service string) (model.ServiceState, error) {
	conn, err := c.conn(ctx)
	if err != nil {
		return model.StateUnknown, model.NewPackageError(model.CategoryUnrecoverable, service, "dial systemd", err)
	}
	defer conn.Close()

	units, err := conn.ListUnitsByNamesContext(ctx, []string{unitName(service)})
	if err != nil || len(units) == 0 {
		return model.StateUnknown, err
	}
	return activeStateToServiceState(units[0].ActiveState), nil
}

func (c *SystemdController) Start(ctx context.Context, service string, grace time.Duration) (model.ServiceOp, error) {
	current, _ := c.Status(ctx, service)
	if current == model.StateRunning {
		logging.Debug(subsystem, "start %s: already running", service)
		return model.ServiceOp{Service: service, FromState: current, ToState: model.StateRunning, Outcome: model.OutcomeOK, Detail: "already running"}, nil
	}

	conn, err := c.conn(ctx)
	if err != nil {
		return failOp(service, current, model.StateRunning, err), err
	}
	defer conn.Close()

	resultCh := make(chan string, 1)
	if _, err := conn.StartUnitContext(ctx, unitName(service), "replace", resultCh); err != nil {
		return failOp(service, current, model.StateRunning, err), err
	}
	<-resultCh

	return c.awaitSuccess(ctx, service, current, model.StateRunning, grace)
}

func (c *SystemdController) Stop(ctx context.Context, service string, grace time.Duration) (model.ServiceOp, error) {
	current, _ := c.Status(ctx, service)
	if current == model.StateStopped || current == model.StateUnknown {
		return model.ServiceOp{Service: service, FromState: current, ToState: model.StateStopped, Outcome: model.OutcomeOK, Detail: "already stopped"}, nil
	}

	conn, err := c.conn(ctx)
	if err != nil {
		return failOp(service, current, model.StateStopped, err), err
	}
	defer conn.Close()

	resultCh := make(chan string, 1)
	if _, err := conn.StopUnitContext(ctx, unitName(service), "replace", resultCh); err != nil {
		return failOp(service, current, model.StateStopped, err), err
	}
	<-resultCh

	return c.awaitSuccess(ctx, service, current, model.StateStopped, grace)
}

// Restart prefers systemd's native restart over stop-then-start.
func (c *SystemdController) Restart(ctx context.Context, service string, grace time.Duration) (model.ServiceOp, error) {
	current, _ := c.Status(ctx, service)

	conn, err := c.conn(ctx)
	if err != nil {
		return failOp(service, current, model.StateRunning, err), err
	}
	defer conn.Close()

	resultCh := make(chan string, 1)
	if _, err := conn.RestartUnitContext(ctx, unitName(service), "replace", resultCh); err != nil {
		return failOp(service, current, model.StateRunning, err), err
	}
	<-resultCh

	return c.awaitSuccess(ctx, service, current, model.StateRunning, grace)
}

func (c *SystemdController) awaitSuccess(ctx context.Context, service string, from, want model.ServiceState, grace time.Duration) (model.ServiceOp, error) {
	final, ok := waitForState(ctx, grace, defaultPollInterval, want, c.Status)
	if !ok {
		detail := fmt.Sprintf("did not reach %s within grace period", want)
		logging.Error(subsystem, nil, "%s: %s", service, detail)
		return failOp(service, from, final, model.NewPackageError(model.CategoryRestartFailure, service, detail, nil)), model.NewPackageError(model.CategoryRestartFailure, service, detail, nil)
	}
	return model.ServiceOp{Service: service, FromState: from, ToState: want, Outcome: model.OutcomeOK}, nil
}

func failOp(service string, from, to model.ServiceState, err error) model.ServiceOp {
	return model.ServiceOp{Service: service, FromState: from, ToState: to, Outcome: model.OutcomeFail, Detail: err.Error()}
}
