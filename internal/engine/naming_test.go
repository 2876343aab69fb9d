package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smilemakc/flowgraph/internal/domain"
)

func TestFindUnusedName_SmallestUnusedSuffix(t *testing.T) {
	existing := map[string]struct{}{"step_1": {}, "step_2": {}}
	assert.Equal(t, "step_3", FindUnusedName(existing, "step"))
}

func TestFindUnusedName_EmptySet(t *testing.T) {
	assert.Equal(t, "step_1", FindUnusedName(map[string]struct{}{}, "step"))
}

func TestFindAvailableStepName_ScansFlow(t *testing.T) {
	trigger := &domain.Step{
		Name: "trigger", Kind: domain.StepTriggerEmpty, Valid: true,
		Next: &domain.Step{Name: "step_1", Kind: domain.StepActionCode, Valid: true},
	}
	flow := domain.NewFlowVersion("f", trigger)
	assert.Equal(t, "step_2", FindAvailableStepName(flow, "step"))
}

func TestRewriteReferences_OnlyInsideTemplateSpans(t *testing.T) {
	result := RewriteReferences("hello {{step_1.output}} and step_1 literally", "step_1", "step_2")
	assert.Equal(t, "hello {{step_2.output}} and step_1 literally", result)
}

func TestRewriteReferences_WordBoundary(t *testing.T) {
	result := RewriteReferences("{{step_1.output}} {{step_10.output}}", "step_1", "step_2")
	assert.Equal(t, "{{step_2.output}} {{step_10.output}}", result)
}

func TestRewriteReferences_Nested(t *testing.T) {
	input := map[string]any{
		"body": "{{step_1.output}}",
		"list": []any{"{{step_1.output}}", "unrelated"},
	}
	out := RewriteReferences(input, "step_1", "step_2").(map[string]any)
	assert.Equal(t, "{{step_2.output}}", out["body"])
	list := out["list"].([]any)
	assert.Equal(t, "{{step_2.output}}", list[0])
	assert.Equal(t, "unrelated", list[1])
}
