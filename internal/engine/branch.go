package engine

import (
	"fmt"

	"github.com/smilemakc/flowgraph/internal/domain"
	flowerrors "github.com/smilemakc/flowgraph/internal/domain/errors"
)

func getRouter(root *domain.Step, name string, op domain.OperationType) (*domain.Step, error) {
	router := GetStep(root, name)
	if router == nil {
		return nil, flowerrors.NewStepNotFoundError(string(op), name)
	}
	if router.Kind != domain.StepActionRouter {
		return nil, flowerrors.NewFlowOperationError(string(op), fmt.Sprintf("step %q is not a router", name))
	}
	return router, nil
}

// handleAddBranch inserts a null child and a fresh condition branch at
// req.Index, keeping children and settings.branches aligned.
func handleAddBranch(flow *domain.FlowVersion, req *domain.BranchIndexRequest) (*domain.FlowVersion, error) {
	cloned := cloneFlow(flow)

	router, err := getRouter(cloned.Trigger, req.RouterName, domain.OpAddBranch)
	if err != nil {
		return nil, err
	}
	settings, err := domain.RouterSettingsOf(router)
	if err != nil {
		return nil, err
	}

	newBranch := domain.RouterBranch{
		Conditions: [][]domain.Condition{{{}}},
		BranchType: domain.BranchTypeCondition,
		BranchName: fmt.Sprintf("Branch %d", len(settings.Branches)+1),
	}

	settings.Branches = insertBranchAt(settings.Branches, req.Index, newBranch)
	router.Children = insertChildAt(router.Children, req.Index, nil)

	return cloned, domain.EncodeSettings(router, settings)
}

// handleDeleteBranch removes the branch at req.Index from both sequences.
func handleDeleteBranch(flow *domain.FlowVersion, req *domain.BranchIndexRequest) (*domain.FlowVersion, error) {
	cloned := cloneFlow(flow)

	router, err := getRouter(cloned.Trigger, req.RouterName, domain.OpDeleteBranch)
	if err != nil {
		return nil, err
	}
	settings, err := domain.RouterSettingsOf(router)
	if err != nil {
		return nil, err
	}
	if req.Index < 0 || req.Index >= len(settings.Branches) {
		return nil, flowerrors.NewFlowOperationError(string(domain.OpDeleteBranch), "branch index out of range")
	}

	settings.Branches = removeBranchAt(settings.Branches, req.Index)
	router.Children = removeChildAt(router.Children, req.Index)

	return cloned, domain.EncodeSettings(router, settings)
}

// handleDuplicateBranch clones the branch at req.Index — both its child
// subtree and its condition metadata — and inserts the copy at
// len(branches)-1, the position just before the last branch, which is the
// documented (if surprising) insertion point rather than one adjacent to
// the source index.
func (e *Engine) handleDuplicateBranch(flow *domain.FlowVersion, req *domain.BranchIndexRequest) (*domain.FlowVersion, error) {
	cloned := cloneFlow(flow)

	router, err := getRouter(cloned.Trigger, req.RouterName, domain.OpDuplicateBranch)
	if err != nil {
		return nil, err
	}
	settings, err := domain.RouterSettingsOf(router)
	if err != nil {
		return nil, err
	}
	if req.Index < 0 || req.Index >= len(settings.Branches) {
		return nil, flowerrors.NewFlowOperationError(string(domain.OpDuplicateBranch), "branch index out of range")
	}

	sourceBranch := settings.Branches[req.Index]
	var sourceChild *domain.Step
	if req.Index < len(router.Children) {
		sourceChild = router.Children[req.Index]
	}

	var renamedChild *domain.Step
	if sourceChild != nil {
		renamedChild, err = duplicateSubtree(cloned.Trigger, sourceChild)
		if err != nil {
			return nil, err
		}
	}

	newBranch := domain.RouterBranch{
		Conditions: cloneConditions(sourceBranch.Conditions),
		BranchType: sourceBranch.BranchType,
		BranchName: sourceBranch.BranchName + " Copy",
	}

	insertPos := len(settings.Branches) - 1
	if insertPos < 0 {
		insertPos = 0
	}

	settings.Branches = insertBranchAt(settings.Branches, insertPos, newBranch)
	var newChild *domain.Step
	if renamedChild != nil {
		newChild = copyWithoutDescendants(renamedChild)
	}
	router.Children = insertChildAt(router.Children, insertPos, newChild)

	if err := domain.EncodeSettings(router, settings); err != nil {
		return nil, err
	}

	if renamedChild != nil {
		replaySource := &domain.Step{
			Name:            renamedChild.Name,
			Kind:            renamedChild.Kind,
			OnSuccess:       renamedChild.OnSuccess,
			OnFailure:       renamedChild.OnFailure,
			FirstLoopAction: renamedChild.FirstLoopAction,
			Children:        renamedChild.Children,
		}
		for _, op := range GetImportOperations(replaySource) {
			if err := e.insertAction(cloned.Trigger, op.AddAction); err != nil {
				return nil, err
			}
		}
	}

	return cloned, nil
}

func cloneConditions(groups [][]domain.Condition) [][]domain.Condition {
	out := make([][]domain.Condition, len(groups))
	for i, group := range groups {
		out[i] = append([]domain.Condition(nil), group...)
	}
	return out
}

func insertBranchAt(branches []domain.RouterBranch, idx int, val domain.RouterBranch) []domain.RouterBranch {
	if idx < 0 {
		idx = 0
	}
	if idx > len(branches) {
		idx = len(branches)
	}
	out := make([]domain.RouterBranch, 0, len(branches)+1)
	out = append(out, branches[:idx]...)
	out = append(out, val)
	out = append(out, branches[idx:]...)
	return out
}

func removeBranchAt(branches []domain.RouterBranch, idx int) []domain.RouterBranch {
	out := make([]domain.RouterBranch, 0, len(branches)-1)
	out = append(out, branches[:idx]...)
	out = append(out, branches[idx+1:]...)
	return out
}

func insertChildAt(children []*domain.Step, idx int, val *domain.Step) []*domain.Step {
	if idx < 0 {
		idx = 0
	}
	if idx > len(children) {
		idx = len(children)
	}
	out := make([]*domain.Step, 0, len(children)+1)
	out = append(out, children[:idx]...)
	out = append(out, val)
	out = append(out, children[idx:]...)
	return out
}

func removeChildAt(children []*domain.Step, idx int) []*domain.Step {
	out := make([]*domain.Step, 0, len(children)-1)
	out = append(out, children[:idx]...)
	out = append(out, children[idx+1:]...)
	return out
}
