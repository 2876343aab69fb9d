package domain

import (
	"time"

	"github.com/google/uuid"
)

// FlowVersion is the aggregate the engine operates on. It has no mutating
// methods of its own: every change is produced by the engine's
// apply(flow, operation) and returns a fresh value, never mutates in place.
// ID gives a flow version a stable identity across the DisplayName/Trigger/
// Valid fields an operation may rewrite.
type FlowVersion struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	State       FlowState `json:"state"`
	Trigger     *Step     `json:"trigger"`
	Valid       bool      `json:"valid"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewFlowVersion creates a draft flow version rooted at trigger.
func NewFlowVersion(displayName string, trigger *Step) *FlowVersion {
	return &FlowVersion{
		ID:          uuid.New(),
		DisplayName: displayName,
		State:       FlowStateDraft,
		Trigger:     trigger,
		Valid:       trigger != nil && trigger.Valid,
		UpdatedAt:   time.Now(),
	}
}
