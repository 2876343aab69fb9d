package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smilemakc/flowgraph/internal/domain"
)

func TestDefaultValidator_PieceWithoutSchemaIsValidOnShapeAlone(t *testing.T) {
	v := NewDefaultValidator(nil, NewExprConditionValidator())
	step := &domain.Step{
		Name: "p",
		Kind: domain.StepActionPiece,
		Settings: json.RawMessage(`{"piece_name":"http","piece_version":"1.0.0","input":{}}`),
	}
	assert.True(t, v.IsStepValid(step))
}

func TestDefaultValidator_PieceMissingNameIsInvalid(t *testing.T) {
	v := NewDefaultValidator(nil, NewExprConditionValidator())
	step := &domain.Step{
		Name: "p",
		Kind: domain.StepActionPiece,
		Settings: json.RawMessage(`{"piece_version":"1.0.0","input":{}}`),
	}
	assert.False(t, v.IsStepValid(step))
}

func TestDefaultValidator_PieceAgainstSchema(t *testing.T) {
	schema := `{"type":"object","required":["body"],"properties":{"body":{"type":"string"}}}`
	v := NewDefaultValidator(map[string]string{"http": schema}, NewExprConditionValidator())

	valid := &domain.Step{
		Name: "p", Kind: domain.StepActionPiece,
		Settings: json.RawMessage(`{"piece_name":"http","piece_version":"1.0.0","input":{"body":"x"}}`),
	}
	assert.True(t, v.IsStepValid(valid))

	invalid := &domain.Step{
		Name: "p", Kind: domain.StepActionPiece,
		Settings: json.RawMessage(`{"piece_name":"http","piece_version":"1.0.0","input":{}}`),
	}
	assert.False(t, v.IsStepValid(invalid))
}

func TestDefaultValidator_RouterChildrenBranchMismatch(t *testing.T) {
	v := NewDefaultValidator(nil, NewExprConditionValidator())
	step := &domain.Step{
		Name:     "r",
		Kind:     domain.StepActionRouter,
		Children: []*domain.Step{nil},
		Settings: json.RawMessage(`{"branches":[{"conditions":[[]],"branch_type":"CONDITION","branch_name":"Branch 1"},{"conditions":[[]],"branch_type":"CONDITION","branch_name":"Branch 2"}]}`),
	}
	assert.False(t, v.IsStepValid(step))
}

func TestDefaultValidator_RouterInvalidConditionSyntax(t *testing.T) {
	v := NewDefaultValidator(nil, NewExprConditionValidator())
	step := &domain.Step{
		Name:     "r",
		Kind:     domain.StepActionRouter,
		Children: []*domain.Step{nil},
		Settings: json.RawMessage(`{"branches":[{"conditions":[[{"expression":"1 +"}]],"branch_type":"CONDITION","branch_name":"Branch 1"}]}`),
	}
	assert.False(t, v.IsStepValid(step))
}

func TestExprConditionValidator_ValidAndInvalidSyntax(t *testing.T) {
	v := NewExprConditionValidator()
	assert.NoError(t, v.CheckSyntax("1 + 1 == 2"))
	assert.Error(t, v.CheckSyntax("1 +"))
}
