package engine

import (
	"fmt"
	"regexp"

	"github.com/smilemakc/flowgraph/internal/domain"
)

// FindUnusedName returns prefix_K for the smallest K >= 1 such that the
// result is not present in existing.
func FindUnusedName(existing map[string]struct{}, prefix string) string {
	for k := 1; ; k++ {
		candidate := fmt.Sprintf("%s_%d", prefix, k)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}

// FindAvailableStepName returns a fresh step name for flow, unused among
// every step currently reachable from its trigger.
func FindAvailableStepName(flow *domain.FlowVersion, prefix string) string {
	existing := nameSet(GetAllSteps(flow.Trigger))
	return FindUnusedName(existing, prefix)
}

func nameSet(steps []*domain.Step) map[string]struct{} {
	set := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		set[step.Name] = struct{}{}
	}
	return set
}

// templateSpan matches a {{...}} reference span, non-greedy so adjacent
// spans on the same line don't merge into one match.
var templateSpan = regexp.MustCompile(`\{\{.*?\}\}`)

// RewriteReferences walks v (the decoded shape of settings.input, or any
// nested JSON-like value) replacing every occurrence of oldName with
// newName, but only inside {{...}} template spans and only when oldName
// appears as a whole identifier (word-boundary match) — a plain substring
// hit outside braces, or inside a longer identifier, is left untouched.
func RewriteReferences(v any, oldName, newName string) any {
	identifier := regexp.MustCompile(`\b` + regexp.QuoteMeta(oldName) + `\b`)

	var walk func(any) any
	walk = func(node any) any {
		switch val := node.(type) {
		case string:
			return templateSpan.ReplaceAllStringFunc(val, func(span string) string {
				return identifier.ReplaceAllString(span, newName)
			})
		case map[string]any:
			out := make(map[string]any, len(val))
			for k, v := range val {
				out[k] = walk(v)
			}
			return out
		case []any:
			out := make([]any, len(val))
			for i, v := range val {
				out[i] = walk(v)
			}
			return out
		default:
			return val
		}
	}
	return walk(v)
}

// RewriteStepReferences rewrites every string inside step's decoded input
// (for piece steps) or condition expressions (for router steps), replacing
// references to oldName with newName. Non-piece, non-router steps are
// returned unchanged since they carry no input to scan.
func RewriteStepReferences(step *domain.Step, oldName, newName string) error {
	if step == nil {
		return nil
	}
	switch {
	case step.Kind.IsPiece():
		settings, err := domain.PieceSettingsOf(step)
		if err != nil {
			return err
		}
		rewritten := RewriteReferences(settings.Input, oldName, newName)
		if m, ok := rewritten.(map[string]any); ok {
			settings.Input = m
		} else {
			settings.Input = nil
		}
		return domain.EncodeSettings(step, settings)
	case step.Kind == domain.StepActionRouter:
		settings, err := domain.RouterSettingsOf(step)
		if err != nil {
			return err
		}
		for bi := range settings.Branches {
			for gi := range settings.Branches[bi].Conditions {
				for ci := range settings.Branches[bi].Conditions[gi] {
					cond := &settings.Branches[bi].Conditions[gi][ci]
					rewritten := RewriteReferences(cond.Expression, oldName, newName)
					cond.Expression, _ = rewritten.(string)
				}
			}
		}
		return domain.EncodeSettings(step, settings)
	default:
		return nil
	}
}
