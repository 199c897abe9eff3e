package cli

import (
	"bytes"
	"testing"

	"confmerge/internal/model"
	"confmerge/internal/txn"

	"github.com/stretchr/testify/assert"
)

func TestRenderConflicts_EmptyProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer
	RenderConflicts(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestRenderConflicts_IncludesFields(t *testing.T) {
	var buf bytes.Buffer
	RenderConflicts(&buf, []model.Conflict{
		{Package: "network", Section: "lan", Name: "ipaddr", Existing: "192.168.1.1", Incoming: "10.0.0.1", Resolution: model.ResolutionKeptExisting},
	})
	out := buf.String()
	assert.Contains(t, out, "network")
	assert.Contains(t, out, "ipaddr")
	assert.Contains(t, out, "kept-existing")
}

func TestRenderServiceLog_IncludesOutcome(t *testing.T) {
	var buf bytes.Buffer
	RenderServiceLog(&buf, []model.ServiceOp{
		{Service: "network", FromState: model.StateStopped, ToState: model.StateRunning, Outcome: model.OutcomeOK},
	})
	out := buf.String()
	assert.Contains(t, out, "network")
	assert.Contains(t, out, "ok")
}

func TestRenderPackageStates(t *testing.T) {
	var buf bytes.Buffer
	RenderPackageStates(&buf, map[string]txn.PackageState{"network": txn.StateCommitted})
	assert.Contains(t, buf.String(), "committed")
}
