package txn

import (
	"context"

	"confmerge/internal/model"
	"confmerge/internal/resolver"

	"confmerge/pkg/logging"
)

// restart computes and drives the restart plan for modifiedPackages,
// rolling configuration and service state back to snapshot on the first
// restart failure when opts.RollbackOnFailure is set.
func (o *Orchestrator) restart(ctx context.Context, result *Result, snapshot map[string]*model.Package, modifiedPackages []string, opts Options) (*Result, error) {
	plan, err := o.resolver.Plan(modifiedPackages)
	if err != nil {
		return result, err
	}

	failedAt := -1
	for i, service := range plan {
		if ctx.Err() != nil {
			failedAt = i
			result.ServiceLog = append(result.ServiceLog, model.ServiceOp{
				Service: string(service), Outcome: model.OutcomeFail, Detail: "transaction deadline exceeded",
			})
			break
		}

		op, err := o.controller.Restart(ctx, string(service), o.restartGrace)
		result.ServiceLog = append(result.ServiceLog, op)
		if err != nil {
			logging.Error(subsystem, err, "restart failed for service %s", service)
			failedAt = i
			break
		}
	}

	if failedAt == -1 {
		logging.Info(subsystem, "transaction succeeded: %d services restarted", len(plan))
		return result, nil
	}

	failedService := plan[failedAt]
	txErr := model.NewError(model.CategoryRestartFailure, "restart failed for service "+string(failedService), nil)

	if !opts.RollbackOnFailure {
		// Committed packages and already-restarted services are left as
		// they are: partial success, with the failing service identified
		// in txErr and result.ServiceLog.
		return result, txErr
	}

	if restoreErr := o.store.Restore(snapshot); restoreErr != nil {
		return result, model.NewError(model.CategoryUnrecoverable, "rollback: snapshot restore failed after restart failure", restoreErr)
	}
	for name, state := range result.PackageStates {
		if state == StateCommitted {
			result.PackageStates[name] = StateReverted
		}
	}

	o.rollbackServices(ctx, result, plan[:failedAt+1])

	return result, txErr
}

// rollbackServices drives every service in attempted (forward restarts
// already recorded in result.ServiceLog, up to and including the failed
// one) back to its pre-transaction state, in strict reverse order.
func (o *Orchestrator) rollbackServices(ctx context.Context, result *Result, attempted []resolver.NodeID) {
	for i := len(attempted) - 1; i >= 0; i-- {
		service := attempted[i]
		forwardOp := result.ServiceLog[i]

		var op model.ServiceOp
		var err error
		switch forwardOp.FromState {
		case model.StateStopped:
			op, err = o.controller.Stop(ctx, string(service), o.restartGrace)
		default:
			op, err = o.controller.Start(ctx, string(service), o.restartGrace)
		}

		if err != nil {
			logging.Error(subsystem, err, "rollback failed for service %s", service)
			op.Outcome = model.OutcomeFail
		}
		result.ServiceLog = append(result.ServiceLog, op)
	}
}
