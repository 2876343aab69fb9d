package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/flowgraph/internal/domain"
)

func pieceStep(name, displayName, input string) *domain.Step {
	return &domain.Step{
		Name:        name,
		DisplayName: displayName,
		Kind:        domain.StepActionPiece,
		Valid:       true,
		Settings:    json.RawMessage(`{"piece_name":"http","piece_version":"1.0.0","input":{"body":"` + input + `"}}`),
	}
}

func testEngine() *Engine {
	return NewDefault()
}

func codeStep(name, displayName string) *domain.Step {
	return &domain.Step{
		Name:        name,
		DisplayName: displayName,
		Kind:        domain.StepActionCode,
		Valid:       true,
	}
}

// Scenario (a): delete a branch step.
func TestApply_DeleteBranchStep(t *testing.T) {
	a4 := pieceStep("A4", "A4", "")
	branch := &domain.Step{
		Name:      "B",
		Kind:      domain.StepActionBranch,
		Valid:     true,
		OnSuccess: pieceStep("A1", "A1", ""),
		OnFailure: pieceStep("A3", "A3", ""),
		Next:      a4,
	}
	trigger := &domain.Step{Name: "trigger", Kind: domain.StepTriggerEmpty, Valid: true, Next: branch}
	flow := domain.NewFlowVersion("f", trigger)

	eng := testEngine()
	result, err := eng.Apply(flow, domain.Operation{
		Type:         domain.OpDeleteAction,
		DeleteAction: &domain.DeleteActionRequest{Name: "B"},
	})
	require.NoError(t, err)

	require.NotNil(t, result.Trigger.Next)
	assert.Equal(t, "A4", result.Trigger.Next.Name)
	assert.Nil(t, GetStep(result.Trigger, "B"))
	assert.Nil(t, GetStep(result.Trigger, "A1"))
}

// Scenario (b): duplicate a piece step and verify reference rewriting.
func TestApply_DuplicatePieceStep(t *testing.T) {
	p := &domain.Step{
		Name:        "step_1",
		DisplayName: "P",
		Kind:        domain.StepActionPiece,
		Valid:       true,
		Settings:    json.RawMessage(`{"piece_name":"http","piece_version":"1.0.0","input":{"body":"hello {{step_1.name}}"}}`),
	}
	trigger := &domain.Step{Name: "trigger", Kind: domain.StepTriggerEmpty, Valid: true, Next: p}
	flow := domain.NewFlowVersion("f", trigger)

	eng := testEngine()
	result, err := eng.Apply(flow, domain.Operation{
		Type:            domain.OpDuplicateAction,
		DuplicateAction: &domain.DuplicateActionRequest{Name: "step_1"},
	})
	require.NoError(t, err)

	original := GetStep(result.Trigger, "step_1")
	require.NotNil(t, original)
	require.NotNil(t, original.Next)
	dup := original.Next
	assert.Equal(t, "step_2", dup.Name)
	assert.Equal(t, "P Copy", dup.DisplayName)

	settings, err := domain.PieceSettingsOf(dup)
	require.NoError(t, err)
	assert.Equal(t, "hello {{step_2.name}}", settings.Input["body"])

	origSettings, err := domain.PieceSettingsOf(original)
	require.NoError(t, err)
	assert.Equal(t, "hello {{step_1.name}}", origSettings.Input["body"])
}

// Scenario (c): move a leaf action into a loop's body.
func TestApply_MoveIntoLoop(t *testing.T) {
	a := pieceStep("A", "A", "")
	loop := &domain.Step{Name: "L", Kind: domain.StepActionLoop, Valid: true, Next: a}
	trigger := &domain.Step{Name: "trigger", Kind: domain.StepTriggerEmpty, Valid: true, Next: loop}
	flow := domain.NewFlowVersion("f", trigger)

	eng := testEngine()
	result, err := eng.Apply(flow, domain.Operation{
		Type: domain.OpMoveAction,
		MoveAction: &domain.MoveActionRequest{
			Name:                         "A",
			NewParent:                    "L",
			StepLocationRelativeToParent: domain.LocationInsideLoop,
		},
	})
	require.NoError(t, err)

	l := GetStep(result.Trigger, "L")
	require.NotNil(t, l)
	assert.Nil(t, l.Next)
	require.NotNil(t, l.FirstLoopAction)
	assert.Equal(t, "A", l.FirstLoopAction.Name)
	assert.Nil(t, l.FirstLoopAction.Next)
}

// Scenario (d): add a branch to a two-branch router.
func TestApply_AddBranchToRouter(t *testing.T) {
	router := &domain.Step{
		Name:     "R",
		Kind:     domain.StepActionRouter,
		Valid:    true,
		Children: []*domain.Step{nil, nil},
		Settings: json.RawMessage(`{"branches":[{"conditions":[[]],"branch_type":"CONDITION","branch_name":"Branch 1"},{"conditions":[[]],"branch_type":"CONDITION","branch_name":"Branch 2"}]}`),
	}
	trigger := &domain.Step{Name: "trigger", Kind: domain.StepTriggerEmpty, Valid: true, Next: router}
	flow := domain.NewFlowVersion("f", trigger)

	eng := testEngine()
	result, err := eng.Apply(flow, domain.Operation{
		Type:        domain.OpAddBranch,
		BranchIndex: &domain.BranchIndexRequest{RouterName: "R", Index: 1},
	})
	require.NoError(t, err)

	r := GetStep(result.Trigger, "R")
	require.NotNil(t, r)
	assert.Len(t, r.Children, 3)
	assert.Nil(t, r.Children[1])

	settings, err := domain.RouterSettingsOf(r)
	require.NoError(t, err)
	require.Len(t, settings.Branches, 3)
	assert.Equal(t, "Branch 3", settings.Branches[1].BranchName)
}

// Scenario (e): normalize upgrades piece versions.
func TestNormalize_UpgradesPieceVersion(t *testing.T) {
	cases := []struct {
		pieceName string
		version   string
		want      string
	}{
		{"http", "0.4.2", "~0.4.2"},
		{"http", "1.2.0", "^1.2.0"},
		{"http", "^2.0.0", "^2.0.0"},
		{"gmail", "0.2.0", "0.2.0"},
	}

	eng := testEngine()
	for _, tc := range cases {
		step := &domain.Step{
			Name:     "p",
			Kind:     domain.StepActionPiece,
			Valid:    true,
			Settings: json.RawMessage(`{"piece_name":"` + tc.pieceName + `","piece_version":"` + tc.version + `","input":{"auth":"secret"}}`),
		}
		trigger := &domain.Step{Name: "trigger", Kind: domain.StepTriggerEmpty, Valid: true, Next: step}
		flow := domain.NewFlowVersion("f", trigger)

		result := eng.Normalize(flow)
		settings, err := domain.PieceSettingsOf(result.Trigger.Next)
		require.NoError(t, err)
		assert.Equal(t, tc.want, settings.PieceVersion)
		assert.Equal(t, "", settings.Input["auth"])
	}
}

// Scenario (f): an unrecognized location for a plain-action parent falls
// through to AFTER rather than raising.
func TestApply_AddActionInvalidLocationFallsThroughToAfter(t *testing.T) {
	p := pieceStep("P", "P", "")
	trigger := &domain.Step{Name: "trigger", Kind: domain.StepTriggerEmpty, Valid: true, Next: p}
	flow := domain.NewFlowVersion("f", trigger)

	eng := testEngine()
	newAction := pieceStep("N", "N", "")
	result, err := eng.Apply(flow, domain.Operation{
		Type: domain.OpAddAction,
		AddAction: &domain.AddActionRequest{
			ParentStep:                   "P",
			StepLocationRelativeToParent: domain.LocationInsideLoop,
			Action:                       newAction,
		},
	})
	require.NoError(t, err)

	p2 := GetStep(result.Trigger, "P")
	require.NotNil(t, p2)
	require.NotNil(t, p2.Next)
	assert.Equal(t, "N", p2.Next.Name)
}

// Invariant 1: apply never mutates its input.
func TestApply_NeverMutatesInput(t *testing.T) {
	p := pieceStep("P", "P", "")
	trigger := &domain.Step{Name: "trigger", Kind: domain.StepTriggerEmpty, Valid: true, Next: p}
	flow := domain.NewFlowVersion("f", trigger)

	before, err := json.Marshal(flow)
	require.NoError(t, err)

	eng := testEngine()
	_, err = eng.Apply(flow, domain.Operation{
		Type:       domain.OpChangeName,
		ChangeName: &domain.ChangeNameRequest{DisplayName: "renamed"},
	})
	require.NoError(t, err)

	after, err := json.Marshal(flow)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

// Invariant 4: flow.valid is the AND of every reachable step's valid flag.
func TestApply_ValidityLaw(t *testing.T) {
	invalid := pieceStep("P", "P", "")
	invalid.Valid = false
	trigger := &domain.Step{Name: "trigger", Kind: domain.StepTriggerEmpty, Valid: true, Next: invalid}
	flow := domain.NewFlowVersion("f", trigger)

	eng := testEngine()
	result, err := eng.Apply(flow, domain.Operation{
		Type:       domain.OpChangeName,
		ChangeName: &domain.ChangeNameRequest{DisplayName: "x"},
	})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

// Invariant 8: delete is a left-inverse of add when adding AFTER with no
// descendants.
func TestApply_DeleteInvertsAdd(t *testing.T) {
	p := codeStep("P", "P")
	trigger := &domain.Step{Name: "trigger", Kind: domain.StepTriggerEmpty, Valid: true, Next: p}
	flow := domain.NewFlowVersion("f", trigger)

	eng := testEngine()
	added, err := eng.Apply(flow, domain.Operation{
		Type: domain.OpAddAction,
		AddAction: &domain.AddActionRequest{
			ParentStep:                   "P",
			StepLocationRelativeToParent: domain.LocationAfter,
			Action:                       codeStep("Q", "Q"),
		},
	})
	require.NoError(t, err)

	deleted, err := eng.Apply(added, domain.Operation{
		Type:         domain.OpDeleteAction,
		DeleteAction: &domain.DeleteActionRequest{Name: "Q"},
	})
	require.NoError(t, err)

	before, err := json.Marshal(flow)
	require.NoError(t, err)
	after, err := json.Marshal(deleted)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestGetImportOperations_ReplayReconstructsTree(t *testing.T) {
	branch := &domain.Step{
		Name:      "B",
		Kind:      domain.StepActionBranch,
		Valid:     true,
		OnSuccess: pieceStep("A1", "A1", ""),
		OnFailure: pieceStep("A3", "A3", ""),
	}
	ops := GetImportOperations(branch)
	require.Len(t, ops, 2)

	eng := testEngine()
	target := &domain.Step{Name: "B", Kind: domain.StepActionBranch, Valid: true}
	flow := domain.NewFlowVersion("f", target)
	for _, op := range ops {
		result, err := eng.Apply(flow, op)
		require.NoError(t, err)
		flow = result
	}

	assert.Equal(t, "A1", flow.Trigger.OnSuccess.Name)
	assert.Equal(t, "A3", flow.Trigger.OnFailure.Name)
}
