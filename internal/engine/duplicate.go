package engine

import (
	"github.com/smilemakc/flowgraph/internal/clone"
	"github.com/smilemakc/flowgraph/internal/domain"
	flowerrors "github.com/smilemakc/flowgraph/internal/domain/errors"
)

// handleDuplicateAction clones the subtree rooted at req.Name, gives every
// cloned step a fresh name and rewrites references to the old names inside
// {{...}} template spans, then inserts the renamed root AFTER the source
// and replays the rest of its structure via import operations.
func (e *Engine) handleDuplicateAction(flow *domain.FlowVersion, req *domain.DuplicateActionRequest) (*domain.FlowVersion, error) {
	cloned := cloneFlow(flow)

	source := GetStep(cloned.Trigger, req.Name)
	if source == nil {
		return nil, flowerrors.NewStepNotFoundError(string(domain.OpDuplicateAction), req.Name)
	}

	renamed, err := duplicateSubtree(cloned.Trigger, source)
	if err != nil {
		return nil, err
	}

	insertReq := &domain.AddActionRequest{
		ParentStep:                   source.Name,
		StepLocationRelativeToParent: domain.LocationAfter,
		Action:                       copyWithoutDescendants(renamed),
	}
	if err := e.insertAction(cloned.Trigger, insertReq); err != nil {
		return nil, err
	}

	replaySource := &domain.Step{
		Name:            renamed.Name,
		Kind:            renamed.Kind,
		OnSuccess:       renamed.OnSuccess,
		OnFailure:       renamed.OnFailure,
		FirstLoopAction: renamed.FirstLoopAction,
		Children:        renamed.Children,
	}
	for _, op := range GetImportOperations(replaySource) {
		if err := e.insertAction(cloned.Trigger, op.AddAction); err != nil {
			return nil, err
		}
	}

	return cloned, nil
}

// duplicateSubtree deep-clones source (with Next cleared, so the clone
// terminates its own chain), assigns every cloned step a name unused
// anywhere in existingRoot or elsewhere in the clone, suffixes each
// display name with " Copy", clears sample-data UI metadata, and rewrites
// every old-name reference inside {{...}} spans to the corresponding new
// name — across the whole clone, since a duplicated step's settings may
// reference a sibling that was duplicated alongside it.
func duplicateSubtree(existingRoot *domain.Step, source *domain.Step) (*domain.Step, error) {
	cloned := clone.MustClone(stepCloner, source)
	cloned.Next = nil

	existingNames := nameSet(GetAllSteps(existingRoot))
	nameMap := make(map[string]string)
	for _, step := range GetAllSteps(cloned) {
		newName := FindUnusedName(existingNames, "step")
		existingNames[newName] = struct{}{}
		nameMap[step.Name] = newName
	}

	for _, step := range GetAllSteps(cloned) {
		step.Name = nameMap[step.Name]
		step.DisplayName = step.DisplayName + " Copy"
		if err := clearSampleData(step); err != nil {
			return nil, err
		}
	}

	for _, step := range GetAllSteps(cloned) {
		for oldName, newName := range nameMap {
			if err := RewriteStepReferences(step, oldName, newName); err != nil {
				return nil, err
			}
		}
	}

	return cloned, nil
}

// clearSampleData resets a piece step's sample-data UI metadata. Non-piece
// steps are untouched.
func clearSampleData(step *domain.Step) error {
	if !step.Kind.IsPiece() {
		return nil
	}
	settings, err := domain.PieceSettingsOf(step)
	if err != nil {
		return err
	}
	settings.InputUIInfo = &domain.InputUIInfo{}
	return domain.EncodeSettings(step, settings)
}
