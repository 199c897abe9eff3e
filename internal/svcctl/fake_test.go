package svcctl

import (
	"context"
	"testing"
	"time"

	"confmerge/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeController_StartIdempotentOnRunning(t *testing.T) {
	f := NewFakeController("network")
	op, err := f.Start(context.Background(), "network", time.Second)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeOK, op.Outcome)
	assert.Equal(t, "already running", op.Detail)
}

func TestFakeController_StartStoppedService(t *testing.T) {
	f := NewFakeController()
	op, err := f.Start(context.Background(), "dnsmasq", time.Second)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeOK, op.Outcome)
	assert.Equal(t, model.StateRunning, op.ToState)

	state, err := f.Status(context.Background(), "dnsmasq")
	require.NoError(t, err)
	assert.Equal(t, model.StateRunning, state)
}

func TestFakeController_RestartFailureRecordsOutcome(t *testing.T) {
	f := NewFakeController("firewall")
	f.FailRestart["firewall"] = true

	op, err := f.Restart(context.Background(), "firewall", time.Second)
	require.Error(t, err)
	assert.Equal(t, model.OutcomeFail, op.Outcome)
	assert.Equal(t, "firewall", op.Service)
}

func TestFakeController_StopThenStatusStopped(t *testing.T) {
	f := NewFakeController("uhttpd")
	op, err := f.Stop(context.Background(), "uhttpd", time.Second)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeOK, op.Outcome)

	state, _ := f.Status(context.Background(), "uhttpd")
	assert.Equal(t, model.StateStopped, state)
}

func TestFakeController_RestartSuccessSequence(t *testing.T) {
	f := NewFakeController("network")
	op, err := f.Restart(context.Background(), "network", time.Second)
	require.NoError(t, err)
	assert.Equal(t, model.StateRunning, op.FromState)
	assert.Equal(t, model.StateRunning, op.ToState)
	assert.Equal(t, model.OutcomeOK, op.Outcome)
}
