package reconcile

import (
	"fmt"

	"cosmos-isolation/core/envelope"
)

// State is a container's position in the upload state machine.
type State string

const (
	StatePending   State = "pending"
	StateReady     State = "ready"
	StateCreating  State = "creating"
	StateWriting   State = "writing"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

var transitions = map[State][]State{
	StatePending:  {StateReady, StateCreating, StateFailed},
	StateCreating: {StateReady, StateFailed},
	StateReady:    {StateWriting, StateFailed},
	StateWriting:  {StateSucceeded, StateFailed},
}

// Strategy records how a container came to be ready.
type Strategy string

const (
	// StrategyExisting means the container was already in the catalog.
	StrategyExisting Strategy = "existing"
	// StrategySchema means it was created with the record's own partition key.
	StrategySchema Strategy = "schema"
	// StrategyFallbackPK means it was created with FallbackPKPath.
	StrategyFallbackPK Strategy = "pk"
	// StrategyID means it was created with IDPath.
	StrategyID Strategy = "id"
)

const (
	FallbackPKPath = "/pk"
	IDPath         = "/id"
)

// Plan status labels shown to the operator.
const (
	StatusExists     = "Exists"
	StatusWillCreate = "Will create"
)

// ContainerPlan is the planned treatment of one record.
type ContainerPlan struct {
	Name         string                       `json:"name"`
	Items        int                          `json:"items"`
	PartitionKey *envelope.PartitionKeySchema `json:"partition_key"`
	Exists       bool                         `json:"exists"`
}

// Status returns StatusExists or StatusWillCreate.
func (p ContainerPlan) Status() string {
	if p.Exists {
		return StatusExists
	}
	return StatusWillCreate
}

// Plan lists every container of an upload in replay order.
type Plan struct {
	Containers []ContainerPlan `json:"containers"`
	Summary    PlanSummary     `json:"summary"`
}

// PlanSummary provides aggregate counts for a plan.
type PlanSummary struct {
	Containers int `json:"containers"`
	Existing   int `json:"existing"`
	ToCreate   int `json:"to_create"`
	TotalItems int `json:"total_items"`
}

// ContainerResult is the outcome of one container.
type ContainerResult struct {
	Name     string   `json:"name"`
	State    State    `json:"state"`
	Strategy Strategy `json:"strategy,omitempty"`
	// Attempted is the number of documents sent to the store.
	Attempted int `json:"attempted"`
	// Uploaded is the number of documents the store accepted.
	Uploaded int `json:"uploaded"`
	// Err is set when State is StateFailed.
	Err error `json:"-"`
}

// NewResult returns a pending result.
func NewResult(name string) *ContainerResult {
	return &ContainerResult{Name: name, State: StatePending}
}

// Advance moves the result to next, rejecting transitions the state machine
// does not allow.
func (r *ContainerResult) Advance(next State) error {
	for _, allowed := range transitions[r.State] {
		if allowed == next {
			r.State = next
			return nil
		}
	}
	return fmt.Errorf("container %s: invalid transition %s -> %s", r.Name, r.State, next)
}

// Fail moves the result to StateFailed from any non-terminal state.
func (r *ContainerResult) Fail(err error) {
	if r.State == StateSucceeded || r.State == StateFailed {
		return
	}
	r.State = StateFailed
	r.Err = err
}

// FailedItems is the number of documents the store rejected.
func (r *ContainerResult) FailedItems() int { return r.Attempted - r.Uploaded }
