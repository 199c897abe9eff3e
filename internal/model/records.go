package model

// Resolution records how a Conflict was settled.
type Resolution string

const (
	ResolutionKeptExisting Resolution = "kept-existing"
	ResolutionTookIncoming Resolution = "took-incoming"
)

// Conflict records a disagreement between the current and incoming trees
// over a single option or list value.
type Conflict struct {
	Package    string
	Section    string
	Name       string // option or list name
	Existing   Value
	Incoming   Value
	Resolution Resolution
}

// ChangeAction enumerates the kinds of modification the Merge Engine can
// record against a Package.
type ChangeAction string

const (
	ActionAddSection    ChangeAction = "add-section"
	ActionAddOption     ChangeAction = "add-option"
	ActionUpdateOpt     ChangeAction = "update-option"
	ActionAddList       ChangeAction = "add-list"
	ActionModifyList    ChangeAction = "modify-list"
	ActionDedupeList    ChangeAction = "dedupe-list"
	ActionRemoveSection ChangeAction = "remove-section"
)

// Change records one modification the engine applied, or would apply
// under dry-run.
type Change struct {
	Action  ChangeAction
	Package string
	Section string
	Name    string // option or list name; empty for add-section
	Before  string
	After   string
}

// ServiceState is the observed or target lifecycle state of a service.
type ServiceState string

const (
	StateRunning ServiceState = "running"
	StateStopped ServiceState = "stopped"
	StateUnknown ServiceState = "unknown"
)

// Outcome is the result recorded against a ServiceOp.
type Outcome string

const (
	OutcomeOK   Outcome = "ok"
	OutcomeFail Outcome = "fail"
)

// ServiceOp is one entry in the Orchestrator's undo log: a single
// state-transition attempt on a named service.
type ServiceOp struct {
	Service   string
	FromState ServiceState
	ToState   ServiceState
	Outcome   Outcome
	Detail    string
}
