// Package flowgraph re-exports the engine's public surface under a single
// import path, the way mbflow's own root package re-exports its executor
// package for external callers.
package flowgraph

import (
	"github.com/smilemakc/flowgraph/internal/config"
	"github.com/smilemakc/flowgraph/internal/domain"
	"github.com/smilemakc/flowgraph/internal/engine"
	"github.com/smilemakc/flowgraph/internal/validation"
)

// Step kind constants.
const (
	TriggerEmpty  = domain.StepTriggerEmpty
	TriggerPiece  = domain.StepTriggerPiece
	ActionPiece   = domain.StepActionPiece
	ActionCode    = domain.StepActionCode
	ActionBranch  = domain.StepActionBranch
	ActionLoop    = domain.StepActionLoop
	ActionRouter  = domain.StepActionRouter
)

// Operation kind constants.
const (
	MoveAction      = domain.OpMoveAction
	LockFlow        = domain.OpLockFlow
	ChangeName      = domain.OpChangeName
	DeleteAction    = domain.OpDeleteAction
	AddAction       = domain.OpAddAction
	UpdateAction    = domain.OpUpdateAction
	UpdateTrigger   = domain.OpUpdateTrigger
	DuplicateAction = domain.OpDuplicateAction
	DeleteBranch    = domain.OpDeleteBranch
	AddBranch       = domain.OpAddBranch
	DuplicateBranch = domain.OpDuplicateBranch
)

// Step-location constants.
const (
	LocationAfter             = domain.LocationAfter
	LocationInsideLoop        = domain.LocationInsideLoop
	LocationInsideTrueBranch  = domain.LocationInsideTrueBranch
	LocationInsideFalseBranch = domain.LocationInsideFalseBranch
	LocationInsideBranch      = domain.LocationInsideBranch
)

type (
	// Step is a node in a flow tree.
	Step = domain.Step
	// FlowVersion is the aggregate the engine transforms.
	FlowVersion = domain.FlowVersion
	// Operation is a tagged request to Apply.
	Operation = domain.Operation
	// Engine is the flow-graph transformation core.
	Engine = engine.Engine
)

// New builds an Engine from its collaborators: a step validator and a
// semver comparator. legacyPieces exempts the given pieces from the
// version-range upgrade normalization applies.
func New(validator validation.StepValidator, semver validation.SemverComparator, legacyPieces []config.LegacyPiece) *Engine {
	return engine.New(validator, semver, legacyPieces)
}

// NewDefault builds an Engine with the built-in struct/schema validator,
// dotted-version comparator, and legacy-piece list.
func NewDefault() *Engine {
	return engine.NewDefault()
}

// GetAllSteps walks root in canonical DFS order.
func GetAllSteps(root *Step) []*Step { return engine.GetAllSteps(root) }

// GetStep returns the step named name reachable from root, or nil.
func GetStep(root *Step, name string) *Step { return engine.GetStep(root, name) }

// GetUsedPieces returns the de-duplicated, first-seen-order piece names
// referenced anywhere in the flow rooted at trigger.
func GetUsedPieces(trigger *Step) []string { return engine.GetUsedPieces(trigger) }

// GetImportOperations linearizes root's descendant structure into a
// replayable sequence of ADD_ACTION operations.
func GetImportOperations(root *Step) []Operation { return engine.GetImportOperations(root) }

// FindPathToStep returns the ancestor path from root to target, or nil.
func FindPathToStep(root *Step, target string) []engine.PathStep {
	return engine.FindPathToStep(root, target)
}

// IsChildOf reports whether name is reachable from composite's subtree.
func IsChildOf(composite *Step, name string) bool { return engine.IsChildOf(composite, name) }

// FindAvailableStepName returns a fresh step name unused anywhere in flow.
func FindAvailableStepName(flow *FlowVersion, prefix string) string {
	return engine.FindAvailableStepName(flow, prefix)
}

// UpdateFlowSecrets carries forward oldFlow's per-step piece credentials
// onto newFlow's matching steps.
func UpdateFlowSecrets(oldFlow, newFlow *FlowVersion) *FlowVersion {
	return engine.UpdateFlowSecrets(oldFlow, newFlow)
}
