package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/smilemakc/flowgraph/internal/clone"
	"github.com/smilemakc/flowgraph/internal/config"
	flowerrors "github.com/smilemakc/flowgraph/internal/domain/errors"
	"github.com/smilemakc/flowgraph/internal/validation"

	"github.com/smilemakc/flowgraph/internal/domain"
)

var stepCloner = clone.NewJSONCloner[*domain.Step]()

// Engine is the flow-graph transformation core. It holds its external
// collaborators — a step validator, a semver comparator, and (implicitly,
// via internal/clone) a JSON-clone capability — as fields rather than
// package-level globals, so a caller can swap in stricter or looser
// validation without the engine itself touching I/O or holding
// process-wide state.
type Engine struct {
	Validator    validation.StepValidator
	Semver       validation.SemverComparator
	LegacyPieces []config.LegacyPiece
}

// New builds an Engine from its collaborators.
func New(validator validation.StepValidator, semver validation.SemverComparator, legacyPieces []config.LegacyPiece) *Engine {
	return &Engine{Validator: validator, Semver: semver, LegacyPieces: legacyPieces}
}

// NewDefault builds an Engine using the default struct/schema validator (no
// piece-input schemas registered), the default dotted-version comparator,
// and the built-in legacy-piece list.
func NewDefault() *Engine {
	return New(
		validation.NewDefaultValidator(nil, validation.NewExprConditionValidator()),
		validation.NewDottedComparator(),
		config.DefaultEngineDefaults().LegacyPieces,
	)
}

func cloneFlow(flow *domain.FlowVersion) *domain.FlowVersion {
	return clone.MustClone(flowCloner, flow)
}

// Apply is the engine's single entry point: it clones flow, dispatches on
// op.Type to the matching handler, upgrades piece-version constraints for
// operations that touch piece settings, and recomputes flow.Valid. The
// input flow is never mutated; every path returns a fresh value built from
// a clone.
func (e *Engine) Apply(flow *domain.FlowVersion, op domain.Operation) (*domain.FlowVersion, error) {
	log.Debug().Str("op", string(op.Type)).Msg("applying flow operation")

	var (
		result *domain.FlowVersion
		err    error
	)

	switch op.Type {
	case domain.OpMoveAction:
		result, err = e.handleMoveAction(flow, op.MoveAction)
	case domain.OpLockFlow:
		result, err = handleLockFlow(flow)
	case domain.OpChangeName:
		result, err = handleChangeName(flow, op.ChangeName)
	case domain.OpDeleteAction:
		result, err = handleDeleteAction(flow, op.DeleteAction)
	case domain.OpAddAction:
		result, err = e.handleAddAction(flow, op.AddAction)
	case domain.OpUpdateAction:
		result, err = e.handleUpdateAction(flow, op.UpdateAction)
	case domain.OpUpdateTrigger:
		result, err = e.handleUpdateTrigger(flow, op.UpdateTrigger)
	case domain.OpDuplicateAction:
		result, err = e.handleDuplicateAction(flow, op.DuplicateAction)
	case domain.OpDeleteBranch:
		result, err = handleDeleteBranch(flow, op.BranchIndex)
	case domain.OpAddBranch:
		result, err = handleAddBranch(flow, op.BranchIndex)
	case domain.OpDuplicateBranch:
		result, err = e.handleDuplicateBranch(flow, op.BranchIndex)
	default:
		return nil, flowerrors.NewFlowOperationError(string(op.Type), "unknown operation type")
	}
	if err != nil {
		return nil, err
	}

	switch op.Type {
	case domain.OpAddAction, domain.OpUpdateAction, domain.OpUpdateTrigger:
		result = e.upgradeAllPieces(result)
	}

	result.Valid = e.IsValid(result)
	return result, nil
}

// IsValid reports whether every step reachable from flow's trigger has its
// Valid flag set.
func (e *Engine) IsValid(flow *domain.FlowVersion) bool {
	for _, step := range GetAllSteps(flow.Trigger) {
		if !step.Valid {
			return false
		}
	}
	return true
}

// GetUsedPieces returns the de-duplicated, first-seen-order list of piece
// names referenced anywhere in the flow rooted at trigger.
func GetUsedPieces(trigger *domain.Step) []string {
	seen := make(map[string]struct{})
	var pieces []string
	for _, step := range GetAllSteps(trigger) {
		if !step.Kind.IsPiece() {
			continue
		}
		settings, err := domain.PieceSettingsOf(step)
		if err != nil || settings.PieceName == "" {
			continue
		}
		if _, ok := seen[settings.PieceName]; ok {
			continue
		}
		seen[settings.PieceName] = struct{}{}
		pieces = append(pieces, settings.PieceName)
	}
	return pieces
}

// UpdateFlowSecrets returns a flow built from newFlow's structure but with
// every piece step's settings.input.auth carried forward from oldFlow's
// step of the same name — used when a UI round-trips a flow through a
// display layer that never sees real credentials.
func UpdateFlowSecrets(oldFlow, newFlow *domain.FlowVersion) *domain.FlowVersion {
	return Transfer(newFlow, func(step *domain.Step) *domain.Step {
		if !step.Kind.IsPiece() {
			return step
		}
		oldStep := GetStep(oldFlow.Trigger, step.Name)
		if oldStep == nil {
			return step
		}
		oldSettings, err := domain.PieceSettingsOf(oldStep)
		if err != nil {
			return step
		}
		newSettings, err := domain.PieceSettingsOf(step)
		if err != nil {
			return step
		}
		auth, ok := oldSettings.Input["auth"]
		if !ok {
			return step
		}
		if newSettings.Input == nil {
			newSettings.Input = map[string]any{}
		}
		newSettings.Input["auth"] = auth
		if err := domain.EncodeSettings(step, newSettings); err != nil {
			return step
		}
		return step
	})
}
