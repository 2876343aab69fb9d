package engine

import (
	"fmt"

	"github.com/smilemakc/flowgraph/internal/clone"
	"github.com/smilemakc/flowgraph/internal/domain"
	flowerrors "github.com/smilemakc/flowgraph/internal/domain/errors"
	"github.com/smilemakc/flowgraph/internal/utils"
)

// handleLockFlow sets state to LOCKED.
func handleLockFlow(flow *domain.FlowVersion) (*domain.FlowVersion, error) {
	cloned := cloneFlow(flow)
	cloned.State = domain.FlowStateLocked
	return cloned, nil
}

// handleChangeName sets the flow's display name.
func handleChangeName(flow *domain.FlowVersion, req *domain.ChangeNameRequest) (*domain.FlowVersion, error) {
	cloned := cloneFlow(flow)
	cloned.DisplayName = req.DisplayName
	return cloned, nil
}

// handleDeleteAction removes the step named req.Name and splices its Next
// into whichever structural slot or chain position referenced it. Deleting
// a composite step drops its structural descendants — they are not
// reachable from any remaining slot. Callers that want to preserve a
// composite's subtree must move it first.
func handleDeleteAction(flow *domain.FlowVersion, req *domain.DeleteActionRequest) (*domain.FlowVersion, error) {
	cloned := cloneFlow(flow)

	target := GetStep(cloned.Trigger, req.Name)
	if target == nil {
		return nil, flowerrors.NewStepNotFoundError(string(domain.OpDeleteAction), req.Name)
	}

	if cloned.Trigger.Name == req.Name {
		cloned.Trigger = target.Next
		return cloned, nil
	}

	parent := GetDirectParentStep(cloned.Trigger, req.Name)
	if parent == nil {
		return nil, flowerrors.NewStepNotFoundError(string(domain.OpDeleteAction), req.Name)
	}
	spliceOut(parent, req.Name, target.Next)
	return cloned, nil
}

// spliceOut replaces whichever of parent's slots points at name with
// replacement.
func spliceOut(parent *domain.Step, name string, replacement *domain.Step) {
	if parent.Next != nil && parent.Next.Name == name {
		parent.Next = replacement
		return
	}
	if parent.OnSuccess != nil && parent.OnSuccess.Name == name {
		parent.OnSuccess = replacement
		return
	}
	if parent.OnFailure != nil && parent.OnFailure.Name == name {
		parent.OnFailure = replacement
		return
	}
	if parent.FirstLoopAction != nil && parent.FirstLoopAction.Name == name {
		parent.FirstLoopAction = replacement
		return
	}
	for i, child := range parent.Children {
		if child != nil && child.Name == name {
			parent.Children[i] = replacement
			return
		}
	}
}

// addSlotFor resolves which field of parent an ADD_ACTION at location
// should write to, returning its current occupant and a setter. A location
// that doesn't match parent's kind raises an error only when parent is
// itself a composite (loop/branch/router expecting one of its own slots);
// for a plain action parent, any location silently falls through to AFTER
// — documented, not corrected, behavior.
func addSlotFor(parent *domain.Step, location domain.StepLocationRelativeToParent, branchIndex *int) (get func() *domain.Step, set func(*domain.Step), err error) {
	if location == domain.LocationAfter || !parent.Kind.IsComposite() {
		return func() *domain.Step { return parent.Next },
			func(s *domain.Step) { parent.Next = s },
			nil
	}

	switch parent.Kind {
	case domain.StepActionLoop:
		if location == domain.LocationInsideLoop {
			return func() *domain.Step { return parent.FirstLoopAction },
				func(s *domain.Step) { parent.FirstLoopAction = s },
				nil
		}
	case domain.StepActionBranch:
		switch location {
		case domain.LocationInsideTrueBranch:
			return func() *domain.Step { return parent.OnSuccess },
				func(s *domain.Step) { parent.OnSuccess = s },
				nil
		case domain.LocationInsideFalseBranch:
			return func() *domain.Step { return parent.OnFailure },
				func(s *domain.Step) { parent.OnFailure = s },
				nil
		}
	case domain.StepActionRouter:
		if location == domain.LocationInsideBranch {
			if branchIndex == nil || *branchIndex < 0 || *branchIndex >= len(parent.Children) {
				return nil, nil, flowerrors.NewFlowOperationError(string(domain.OpAddAction), "branch_index out of range")
			}
			idx := *branchIndex
			return func() *domain.Step { return parent.Children[idx] },
				func(s *domain.Step) { parent.Children[idx] = s },
				nil
		}
	}

	return nil, nil, flowerrors.NewFlowOperationError(
		string(domain.OpAddAction),
		fmt.Sprintf("location %s invalid for parent kind %s", location, parent.Kind),
	)
}

// handleAddAction inserts req.Action as a child of req.ParentStep at
// req.StepLocationRelativeToParent, head-inserting onto the target chain:
// the new node takes over whatever the slot previously pointed at, and the
// slot is repointed at the new node.
func (e *Engine) handleAddAction(flow *domain.FlowVersion, req *domain.AddActionRequest) (*domain.FlowVersion, error) {
	cloned := cloneFlow(flow)
	if err := e.insertAction(cloned.Trigger, req); err != nil {
		return nil, err
	}
	return cloned, nil
}

// insertAction performs the same head-insertion as handleAddAction but
// operates directly on root without cloning, so callers that replay many
// import operations against one working tree (MOVE_ACTION, DUPLICATE_ACTION,
// DUPLICATE_BRANCH) do so without re-cloning the whole flow per step.
func (e *Engine) insertAction(root *domain.Step, req *domain.AddActionRequest) error {
	parent := GetStep(root, req.ParentStep)
	if parent == nil {
		return flowerrors.NewStepNotFoundError(string(domain.OpAddAction), req.ParentStep)
	}

	get, set, err := addSlotFor(parent, req.StepLocationRelativeToParent, req.BranchIndex)
	if err != nil {
		return err
	}

	newAction := clone.MustClone(stepCloner, req.Action)
	newAction.Valid = newAction.Valid && e.Validator.IsStepValid(newAction)
	newAction.Next = get()
	set(newAction)
	return nil
}

// handleUpdateAction replaces the step named req.Name with a freshly built
// action of req.Kind, carrying over the old step's Next unconditionally and
// its other structural slots only when the old and new kinds agree — a
// branch replaced by another branch keeps on_success/on_failure, but a
// branch replaced by a loop starts with an empty body.
func (e *Engine) handleUpdateAction(flow *domain.FlowVersion, req *domain.UpdateActionRequest) (*domain.FlowVersion, error) {
	cloned := cloneFlow(flow)

	old := GetStep(cloned.Trigger, req.Name)
	if old == nil {
		return nil, flowerrors.NewStepNotFoundError(string(domain.OpUpdateAction), req.Name)
	}

	parent := GetDirectParentStep(cloned.Trigger, req.Name)

	updated := &domain.Step{
		Name:        req.Name,
		DisplayName: utils.DefaultValue(req.DisplayName, old.DisplayName),
		Kind:        req.Kind,
		Settings:    req.Settings,
		Next:        old.Next,
	}
	if old.Kind == req.Kind {
		updated.OnSuccess = old.OnSuccess
		updated.OnFailure = old.OnFailure
		updated.FirstLoopAction = old.FirstLoopAction
		updated.Children = old.Children
	} else if req.Kind == domain.StepActionRouter {
		updated.Children = []*domain.Step{nil, nil}
	}

	updated.Valid = e.Validator.IsStepValid(updated)
	if req.Valid != nil {
		updated.Valid = updated.Valid && *req.Valid
	}

	if parent == nil {
		cloned.Trigger = updated
	} else {
		spliceOut(parent, req.Name, updated)
	}
	return cloned, nil
}

// handleUpdateTrigger rebuilds the trigger in place, preserving its Name
// and Next.
func (e *Engine) handleUpdateTrigger(flow *domain.FlowVersion, req *domain.UpdateTriggerRequest) (*domain.FlowVersion, error) {
	cloned := cloneFlow(flow)
	if cloned.Trigger == nil {
		return nil, flowerrors.NewFlowOperationError(string(domain.OpUpdateTrigger), "flow has no trigger")
	}

	updated := &domain.Step{
		Name:        cloned.Trigger.Name,
		DisplayName: utils.DefaultValue(req.DisplayName, cloned.Trigger.DisplayName),
		Kind:        req.Kind,
		Settings:    req.Settings,
		Next:        cloned.Trigger.Next,
	}
	updated.Valid = e.Validator.IsStepValid(updated)
	if req.Valid != nil {
		updated.Valid = updated.Valid && *req.Valid
	}
	cloned.Trigger = updated
	return cloned, nil
}
