package domain

import "encoding/json"

// Step is a node in a flow tree. It is a flat, tagged-variant struct rather
// than an interface hierarchy: Kind selects which of the structural slots
// below are meaningful, and every site that walks the tree switches on Kind
// exhaustively (see internal/engine). One flattened struct rather than an
// interface per kind, because a step's "type" is closed and small enough
// that a switch is clearer than a type hierarchy.
type Step struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Kind        StepKind        `json:"type"`
	Valid       bool            `json:"valid"`
	Settings    json.RawMessage `json:"settings,omitempty"`

	// Next is the sequential successor. Always an action, never a trigger.
	Next *Step `json:"next,omitempty"`

	// Branch-only.
	OnSuccess *Step `json:"on_success,omitempty"`
	OnFailure *Step `json:"on_failure,omitempty"`

	// Loop-only.
	FirstLoopAction *Step `json:"first_loop_action,omitempty"`

	// Router-only. len(Children) must equal len(RouterSettings.Branches).
	Children []*Step `json:"children,omitempty"`
}

// RouterBranch is one entry of a router step's settings.branches, aligned
// index-for-index with Step.Children.
type RouterBranch struct {
	Conditions [][]Condition `json:"conditions"`
	BranchType BranchType    `json:"branch_type"`
	BranchName string        `json:"branch_name"`
}

// Condition is a single entry inside a router branch's condition group. The
// engine never evaluates conditions (that is execution, out of scope); it
// only validates their Expression syntax and rewrites identifiers inside
// Expression the way it rewrites any other settings string.
type Condition struct {
	Expression string `json:"expression"`
}

// RouterSettings is the decoded shape of settings for StepActionRouter steps.
type RouterSettings struct {
	Branches []RouterBranch `json:"branches"`
}

// PieceSettings is the decoded shape of settings for piece actions/triggers
// (StepActionPiece, StepTriggerPiece).
type PieceSettings struct {
	PieceName    string          `json:"piece_name"`
	PieceVersion string          `json:"piece_version"`
	Input        map[string]any  `json:"input"`
	InputUIInfo  *InputUIInfo    `json:"input_ui_info,omitempty"`
}

// InputUIInfo is sample-data metadata stripped by normalization.
type InputUIInfo struct {
	CurrentSelectedData any    `json:"current_selected_data,omitempty"`
	SampleDataFileID    string `json:"sample_data_file_id,omitempty"`
	LastTestDate        string `json:"last_test_date,omitempty"`
}

// DecodeSettings unmarshals step.Settings into out. A nil/empty Settings
// decodes to a zero-value out, never an error.
func DecodeSettings(step *Step, out any) error {
	if step == nil || len(step.Settings) == 0 {
		return nil
	}
	return json.Unmarshal(step.Settings, out)
}

// EncodeSettings marshals in and assigns it to step.Settings.
func EncodeSettings(step *Step, in any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	step.Settings = raw
	return nil
}

// PieceSettingsOf decodes a piece step's settings. Returns the zero value
// for non-piece steps.
func PieceSettingsOf(step *Step) (PieceSettings, error) {
	var s PieceSettings
	if step == nil || !step.Kind.IsPiece() {
		return s, nil
	}
	err := DecodeSettings(step, &s)
	return s, err
}

// RouterSettingsOf decodes a router step's settings.
func RouterSettingsOf(step *Step) (RouterSettings, error) {
	var s RouterSettings
	if step == nil || step.Kind != StepActionRouter {
		return s, nil
	}
	err := DecodeSettings(step, &s)
	return s, err
}

// StructuralChildren returns the heads of step's structural child slots
// (never Next), in the canonical order used by DFS: branch success then
// failure, loop body, router children in index order.
func (s *Step) StructuralChildren() []*Step {
	if s == nil {
		return nil
	}
	switch s.Kind {
	case StepActionBranch:
		return []*Step{s.OnSuccess, s.OnFailure}
	case StepActionLoop:
		return []*Step{s.FirstLoopAction}
	case StepActionRouter:
		return s.Children
	default:
		return nil
	}
}
