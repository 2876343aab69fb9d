package engine

import (
	"encoding/json"
	"fmt"

	"github.com/smilemakc/flowgraph/internal/domain"
)

// GetImportOperations linearizes root's descendant structure into an
// ordered sequence of ADD_ACTION operations. Replayed against a flow where
// root already exists with its descendants stripped, the sequence
// reconstructs the original tree. This exists because ADD_ACTION always
// head-inserts onto a chain or slot: the only way to rebuild a pre-built
// chain is to insert its members one at a time, leaves-last, in the order
// this function emits them. Callers (MOVE_ACTION, DUPLICATE_ACTION,
// DUPLICATE_BRANCH) must preserve that order exactly.
func GetImportOperations(root *domain.Step) []domain.Operation {
	var ops []domain.Operation
	emitImportOps(root, &ops)
	return ops
}

func emitImportOps(step *domain.Step, ops *[]domain.Operation) {
	if step == nil {
		return
	}

	switch step.Kind {
	case domain.StepActionBranch:
		emitChildOp(step, step.OnSuccess, domain.LocationInsideTrueBranch, nil, ops)
		emitChildOp(step, step.OnFailure, domain.LocationInsideFalseBranch, nil, ops)
	case domain.StepActionLoop:
		emitChildOp(step, step.FirstLoopAction, domain.LocationInsideLoop, nil, ops)
	case domain.StepActionRouter:
		for i, child := range step.Children {
			index := i
			emitChildOp(step, child, domain.LocationInsideBranch, &index, ops)
		}
	}

	if step.Next != nil {
		*ops = append(*ops, domain.Operation{
			Type: domain.OpAddAction,
			AddAction: &domain.AddActionRequest{
				ParentStep:                   step.Name,
				StepLocationRelativeToParent: domain.LocationAfter,
				Action:                       copyWithoutDescendants(step.Next),
			},
		})
		emitImportOps(step.Next, ops)
	}
}

func emitChildOp(parent, child *domain.Step, location domain.StepLocationRelativeToParent, branchIndex *int, ops *[]domain.Operation) {
	if child == nil {
		return
	}

	req := &domain.AddActionRequest{
		ParentStep:                   parent.Name,
		StepLocationRelativeToParent: location,
		Action:                       copyWithoutDescendants(child),
	}
	if branchIndex != nil {
		req.BranchIndex = branchIndex
		req.BranchName = fmt.Sprintf("Branch %d", *branchIndex+1)
	}

	*ops = append(*ops, domain.Operation{Type: domain.OpAddAction, AddAction: req})
	emitImportOps(child, ops)
}

// copyWithoutDescendants clones step's own fields, stripping every
// structural slot and Next so replay re-adds descendants one at a time
// rather than as a pre-wired subtree.
func copyWithoutDescendants(step *domain.Step) *domain.Step {
	if step == nil {
		return nil
	}
	var settings json.RawMessage
	if step.Settings != nil {
		settings = append(json.RawMessage(nil), step.Settings...)
	}
	return &domain.Step{
		Name:        step.Name,
		DisplayName: step.DisplayName,
		Kind:        step.Kind,
		Valid:       step.Valid,
		Settings:    settings,
	}
}
