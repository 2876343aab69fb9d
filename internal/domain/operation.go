package domain

// OperationType is the closed set of mutations apply() understands.
type OperationType string

const (
	OpMoveAction      OperationType = "MOVE_ACTION"
	OpLockFlow        OperationType = "LOCK_FLOW"
	OpChangeName      OperationType = "CHANGE_NAME"
	OpDeleteAction    OperationType = "DELETE_ACTION"
	OpAddAction       OperationType = "ADD_ACTION"
	OpUpdateAction    OperationType = "UPDATE_ACTION"
	OpUpdateTrigger   OperationType = "UPDATE_TRIGGER"
	OpDuplicateAction OperationType = "DUPLICATE_ACTION"
	OpDeleteBranch    OperationType = "DELETE_BRANCH"
	OpAddBranch       OperationType = "ADD_BRANCH"
	OpDuplicateBranch OperationType = "DUPLICATE_BRANCH"
)

// Operation is a tagged request to apply(). Exactly the field matching Type
// is populated; the others are nil. This closed-union-via-pointer-fields
// shape is chosen over one interface per operation type because handlers
// dispatch on a single switch in apply() and benefit from a flat,
// JSON-serializable request.
type Operation struct {
	Type OperationType `json:"type"`

	MoveAction      *MoveActionRequest      `json:"move_action,omitempty"`
	ChangeName      *ChangeNameRequest      `json:"change_name,omitempty"`
	DeleteAction    *DeleteActionRequest    `json:"delete_action,omitempty"`
	AddAction       *AddActionRequest       `json:"add_action,omitempty"`
	UpdateAction    *UpdateActionRequest    `json:"update_action,omitempty"`
	UpdateTrigger   *UpdateTriggerRequest   `json:"update_trigger,omitempty"`
	DuplicateAction *DuplicateActionRequest `json:"duplicate_action,omitempty"`
	BranchIndex     *BranchIndexRequest     `json:"branch_index,omitempty"`
}

// MoveActionRequest relocates the subtree rooted at Name under NewParent.
type MoveActionRequest struct {
	Name                         string                       `json:"name"`
	NewParent                    string                       `json:"new_parent"`
	StepLocationRelativeToParent StepLocationRelativeToParent `json:"step_location_relative_to_parent"`
	BranchIndex                  *int                         `json:"branch_index,omitempty"`
}

// ChangeNameRequest sets the flow's display name.
type ChangeNameRequest struct {
	DisplayName string `json:"display_name"`
}

// DeleteActionRequest removes the step named Name.
type DeleteActionRequest struct {
	Name string `json:"name"`
}

// AddActionRequest inserts Action as a child of ParentStep. BranchName is
// set only by the import-operation generator for router children; it is
// informational (the router's settings.branches already carries the real
// branch metadata) and the handler does not consume it.
type AddActionRequest struct {
	ParentStep                   string                       `json:"parent_step"`
	StepLocationRelativeToParent StepLocationRelativeToParent `json:"step_location_relative_to_parent"`
	BranchIndex                  *int                         `json:"branch_index,omitempty"`
	BranchName                   string                       `json:"branch_name,omitempty"`
	Action                       *Step                        `json:"action"`
}

// UpdateActionRequest replaces the step named Name with a newly built
// action of the given kind/settings, carrying over compatible structural
// slots from the old step.
type UpdateActionRequest struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Kind        StepKind        `json:"type"`
	Settings    []byte          `json:"settings"`
	Valid       *bool           `json:"valid,omitempty"`
}

// UpdateTriggerRequest rebuilds the trigger in place.
type UpdateTriggerRequest struct {
	DisplayName string   `json:"display_name"`
	Kind        StepKind `json:"type"`
	Settings    []byte   `json:"settings"`
	Valid       *bool    `json:"valid,omitempty"`
}

// DuplicateActionRequest clones the subtree rooted at Name.
type DuplicateActionRequest struct {
	Name string `json:"name"`
}

// BranchIndexRequest targets one branch of a router, used by ADD_BRANCH,
// DELETE_BRANCH and DUPLICATE_BRANCH.
type BranchIndexRequest struct {
	RouterName string `json:"router_name"`
	Index      int    `json:"index"`
}
