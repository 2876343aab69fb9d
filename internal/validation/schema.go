// Package validation hosts the schema-validation collaborator the engine
// consumes at arm's length: steps carry their own valid bit, and it is this
// package's job to decide what that bit should be, not the engine's.
package validation

import (
	validatorpkg "github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"

	"github.com/smilemakc/flowgraph/internal/domain"
)

// StepValidator decides whether a step is well-formed. The engine never
// inlines this logic: ADD_ACTION, UPDATE_ACTION and UPDATE_TRIGGER all defer
// to a StepValidator to compute the step's valid bit, then treat a negative
// result as data (clear the flag) rather than as an error.
type StepValidator interface {
	IsStepValid(step *domain.Step) bool
}

// envelope carries the struct tags validator/v10 checks against every step
// regardless of kind, struct tags rather than hand-written field checks.
type envelope struct {
	Name string `validate:"required"`
	Kind string `validate:"required,oneof=TRIGGER_EMPTY TRIGGER_PIECE ACTION_PIECE ACTION_CODE ACTION_BRANCH ACTION_LOOP ACTION_ROUTER"`
}

type pieceEnvelope struct {
	PieceName    string `validate:"required"`
	PieceVersion string `validate:"required"`
}

// DefaultValidator composes struct-tag validation of the step envelope with
// JSON-schema validation of piece input and router branch condition syntax.
// Each collaborator owns one concern; none of them know about the others.
type DefaultValidator struct {
	structValidate *validatorpkg.Validate
	pieceSchemas   map[string]string // piece_name -> JSON schema document
	conditions     ConditionValidator
}

// NewDefaultValidator builds a DefaultValidator. pieceSchemas may be nil; a
// piece with no registered schema is considered valid on input shape alone.
func NewDefaultValidator(pieceSchemas map[string]string, conditions ConditionValidator) *DefaultValidator {
	return &DefaultValidator{
		structValidate: validatorpkg.New(),
		pieceSchemas:   pieceSchemas,
		conditions:     conditions,
	}
}

// IsStepValid implements StepValidator.
func (v *DefaultValidator) IsStepValid(step *domain.Step) bool {
	if step == nil {
		return false
	}
	env := envelope{Name: step.Name, Kind: step.Kind.String()}
	if err := v.structValidate.Struct(env); err != nil {
		return false
	}

	switch {
	case step.Kind.IsPiece():
		return v.isPieceValid(step)
	case step.Kind == domain.StepActionRouter:
		return v.isRouterValid(step)
	default:
		return true
	}
}

func (v *DefaultValidator) isPieceValid(step *domain.Step) bool {
	settings, err := domain.PieceSettingsOf(step)
	if err != nil {
		return false
	}
	pe := pieceEnvelope{PieceName: settings.PieceName, PieceVersion: settings.PieceVersion}
	if err := v.structValidate.Struct(pe); err != nil {
		return false
	}

	schema, ok := v.pieceSchemas[settings.PieceName]
	if !ok || schema == "" {
		return true
	}
	return validateAgainstSchema(schema, settings.Input)
}

func (v *DefaultValidator) isRouterValid(step *domain.Step) bool {
	settings, err := domain.RouterSettingsOf(step)
	if err != nil {
		return false
	}
	if len(step.Children) != len(settings.Branches) {
		return false
	}
	if v.conditions == nil {
		return true
	}
	for _, branch := range settings.Branches {
		for _, group := range branch.Conditions {
			for _, cond := range group {
				if cond.Expression == "" {
					continue
				}
				if err := v.conditions.CheckSyntax(cond.Expression); err != nil {
					return false
				}
			}
		}
	}
	return true
}

// validateAgainstSchema runs input through gojsonschema. A malformed schema
// document or a validation error both count as invalid input: there is no
// collaborator left to escalate to, and spec behavior is "clear valid", not
// "raise".
func validateAgainstSchema(schema string, input map[string]any) bool {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(input)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return false
	}
	return result.Valid()
}

// ConditionValidator checks router branch condition expression syntax
// without evaluating them (evaluation is execution, out of scope).
type ConditionValidator interface {
	CheckSyntax(expression string) error
}
