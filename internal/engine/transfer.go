package engine

import (
	"context"

	"github.com/smilemakc/flowgraph/internal/clone"
	"github.com/smilemakc/flowgraph/internal/domain"
)

var flowCloner = clone.NewJSONCloner[*domain.FlowVersion]()

// StepRewriter rewrites a single step. It may modify its argument in place,
// since Transfer only hands it nodes of its own deep clone; it returns the
// replacement (possibly the same pointer, possibly nil to
// delete the node — callers that need deletion use a handler instead,
// since Transfer never changes tree shape beyond what f returns).
type StepRewriter func(step *domain.Step) *domain.Step

// Transfer returns a new flow whose trigger is obtained by applying f
// bottom-independently to every step reachable from flow.Trigger: f runs on
// the current node first, then the function recurses into the *updated*
// node's structural children and Next. Transfer always operates on a deep
// clone of flow, so the caller's input is never mutated — this is the one
// guarantee every operation handler in this package leans on instead of
// re-implementing defensive copying itself.
func Transfer(flow *domain.FlowVersion, f StepRewriter) *domain.FlowVersion {
	cloned := clone.MustClone(flowCloner, flow)
	cloned.Trigger = transferStep(cloned.Trigger, f)
	return cloned
}

func transferStep(step *domain.Step, f StepRewriter) *domain.Step {
	if step == nil {
		return nil
	}
	updated := f(step)
	if updated == nil {
		return nil
	}

	result := *updated
	result.Next = transferStep(updated.Next, f)
	result.OnSuccess = transferStep(updated.OnSuccess, f)
	result.OnFailure = transferStep(updated.OnFailure, f)
	result.FirstLoopAction = transferStep(updated.FirstLoopAction, f)
	if updated.Children != nil {
		children := make([]*domain.Step, len(updated.Children))
		for i, child := range updated.Children {
			children[i] = transferStep(child, f)
		}
		result.Children = children
	}
	return &result
}

// AsyncStepResult is the outcome delivered on an AsyncStepRewriter's channel.
type AsyncStepResult struct {
	Step *domain.Step
	Err  error
}

// AsyncStepRewriter is the future-returning counterpart to StepRewriter: it
// starts the rewrite and returns a channel that receives exactly one result.
type AsyncStepRewriter func(ctx context.Context, step *domain.Step) <-chan AsyncStepResult

// TransferAsync mirrors Transfer but awaits each node's rewrite before
// recursing into its children, preserving the same deterministic DFS order
// as the synchronous form. No two rewrites run concurrently: the point of
// this variant is to let the caller's rewriter suspend (e.g. on an external
// call) without the engine itself spawning unordered parallel work.
func TransferAsync(ctx context.Context, flow *domain.FlowVersion, f AsyncStepRewriter) (*domain.FlowVersion, error) {
	cloned := clone.MustClone(flowCloner, flow)
	trigger, err := transferStepAsync(ctx, cloned.Trigger, f)
	if err != nil {
		return nil, err
	}
	cloned.Trigger = trigger
	return cloned, nil
}

func transferStepAsync(ctx context.Context, step *domain.Step, f AsyncStepRewriter) (*domain.Step, error) {
	if step == nil {
		return nil, nil
	}

	var updated *domain.Step
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-f(ctx, step):
		if res.Err != nil {
			return nil, res.Err
		}
		updated = res.Step
	}
	if updated == nil {
		return nil, nil
	}

	result := *updated
	return finishAsyncNode(ctx, &result, updated, f)
}

func finishAsyncNode(ctx context.Context, result *domain.Step, updated *domain.Step, f AsyncStepRewriter) (*domain.Step, error) {
	next, err := transferStepAsync(ctx, updated.Next, f)
	if err != nil {
		return nil, err
	}
	result.Next = next

	onSuccess, err := transferStepAsync(ctx, updated.OnSuccess, f)
	if err != nil {
		return nil, err
	}
	result.OnSuccess = onSuccess

	onFailure, err := transferStepAsync(ctx, updated.OnFailure, f)
	if err != nil {
		return nil, err
	}
	result.OnFailure = onFailure

	firstLoop, err := transferStepAsync(ctx, updated.FirstLoopAction, f)
	if err != nil {
		return nil, err
	}
	result.FirstLoopAction = firstLoop

	if updated.Children != nil {
		children := make([]*domain.Step, len(updated.Children))
		for i, child := range updated.Children {
			rewritten, err := transferStepAsync(ctx, child, f)
			if err != nil {
				return nil, err
			}
			children[i] = rewritten
		}
		result.Children = children
	}
	return result, nil
}
