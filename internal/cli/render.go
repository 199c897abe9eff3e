// Package cli renders transaction results (conflicts, changes, service
// operations) as tables for the command-line front end.
package cli

import (
	"io"

	"confmerge/internal/model"
	"confmerge/internal/txn"

	strs "confmerge/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// descriptionMaxLen bounds how much of a before/after value is shown per
// table cell before truncation.
const descriptionMaxLen = 40

// RenderConflicts writes a table of conflicts to w. An empty slice
// renders nothing.
func RenderConflicts(w io.Writer, conflicts []model.Conflict) {
	if len(conflicts) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Package", "Section", "Option/List", "Existing", "Incoming", "Resolution"})
	for _, c := range conflicts {
		t.AppendRow(table.Row{
			c.Package, c.Section, c.Name,
			strs.TruncateDescription(string(c.Existing), descriptionMaxLen),
			strs.TruncateDescription(string(c.Incoming), descriptionMaxLen),
			c.Resolution,
		})
	}
	t.Render()
}

// RenderChanges writes a table of changes to w.
func RenderChanges(w io.Writer, changes []model.Change) {
	if len(changes) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Action", "Package", "Section", "Name", "Before", "After"})
	for _, c := range changes {
		t.AppendRow(table.Row{
			c.Action, c.Package, c.Section, c.Name,
			strs.TruncateDescription(c.Before, descriptionMaxLen),
			strs.TruncateDescription(c.After, descriptionMaxLen),
		})
	}
	t.Render()
}

// RenderServiceLog writes the undo log (forward and rollback service
// operations) as a table to w.
func RenderServiceLog(w io.Writer, log []model.ServiceOp) {
	if len(log) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Service", "From", "To", "Outcome", "Detail"})
	for _, op := range log {
		t.AppendRow(table.Row{
			op.Service, op.FromState, op.ToState, op.Outcome,
			strs.TruncateDescription(op.Detail, descriptionMaxLen),
		})
	}
	t.Render()
}

// RenderPackageStates writes the final per-package disposition as a
// table to w.
func RenderPackageStates(w io.Writer, states map[string]txn.PackageState) {
	if len(states) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Package", "State"})
	for pkg, state := range states {
		t.AppendRow(table.Row{pkg, state})
	}
	t.Render()
}
