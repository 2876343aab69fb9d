// Package engine implements the pure flow-graph transformation core: a
// single apply(flow, operation) entry point plus the traversal, rewrite,
// naming and normalization primitives it is built from. Nothing here
// performs I/O, blocks, or retains state across calls.
package engine

import "github.com/smilemakc/flowgraph/internal/domain"

// GetAllSteps walks root in the canonical DFS order: the node itself, then
// its structural children in their kind-specific order (branch success then
// failure, loop body, router children by index), then the node reached via
// Next. This order is the one observable order used for name-uniqueness
// checks, import-operation replay and find-path lookups.
func GetAllSteps(root *domain.Step) []*domain.Step {
	if root == nil {
		return nil
	}
	steps := []*domain.Step{root}
	for _, child := range root.StructuralChildren() {
		steps = append(steps, GetAllSteps(child)...)
	}
	steps = append(steps, GetAllSteps(root.Next)...)
	return steps
}

// GetStep returns the step named name reachable from root, or nil.
func GetStep(root *domain.Step, name string) *domain.Step {
	for _, step := range GetAllSteps(root) {
		if step.Name == name {
			return step
		}
	}
	return nil
}

// GetDirectChildren returns the chain of steps reached by walking Next from
// head, head included, stopping when Next is nil. This is the "chain" from
// the glossary; its last element is the chain's last step. No handler in
// this package calls it.
func GetDirectChildren(head *domain.Step) []*domain.Step {
	var out []*domain.Step
	for step := head; step != nil; step = step.Next {
		out = append(out, step)
	}
	return out
}

// IsChildOf reports whether name is reachable from composite's structural
// slots or Next chain — i.e. whether composite is an ancestor of name.
func IsChildOf(composite *domain.Step, name string) bool {
	if composite == nil {
		return false
	}
	for _, step := range GetAllSteps(composite) {
		if step == composite {
			continue
		}
		if step.Name == name {
			return true
		}
	}
	return false
}

// GetDirectParentStep locates the unique step whose Next or structural slot
// points directly at the step named name. Returns nil if name is the root
// or is not found. Search is recursive with a short-circuit: a composite's
// subtree is only descended into when it actually contains name.
func GetDirectParentStep(root *domain.Step, name string) *domain.Step {
	if root == nil {
		return nil
	}
	if root.Next != nil {
		if root.Next.Name == name {
			return root
		}
		if IsChildOf(root.Next, name) {
			return GetDirectParentStep(root.Next, name)
		}
	}
	for _, child := range root.StructuralChildren() {
		if child == nil {
			continue
		}
		if child.Name == name {
			return root
		}
		if IsChildOf(child, name) {
			return GetDirectParentStep(child, name)
		}
	}
	return nil
}

// PathStep is one entry of the ancestor path returned by FindPathToStep: the
// step itself plus its index in the DFS enumeration of the whole tree passed
// to FindPathToStep.
type PathStep struct {
	Step  *domain.Step
	Index int
}

// FindPathToStep returns the ordered sequence of ancestor steps from root
// down to (and including) the step named target, each paired with its DFS
// index among root's full enumeration. Returns nil if target is not found.
func FindPathToStep(root *domain.Step, target string) []PathStep {
	all := GetAllSteps(root)
	indexOf := make(map[string]int, len(all))
	for i, step := range all {
		indexOf[step.Name] = i
	}
	if _, ok := indexOf[target]; !ok {
		return nil
	}

	var path []PathStep
	var walk func(step *domain.Step) bool
	walk = func(step *domain.Step) bool {
		if step == nil {
			return false
		}
		path = append(path, PathStep{Step: step, Index: indexOf[step.Name]})
		if step.Name == target {
			return true
		}
		for _, child := range step.StructuralChildren() {
			if walk(child) {
				return true
			}
		}
		if walk(step.Next) {
			return true
		}
		path = path[:len(path)-1]
		return false
	}
	walk(root)
	return path
}
