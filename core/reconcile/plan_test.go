package reconcile

import (
	"testing"

	"cosmos-isolation/core/envelope"

	"github.com/stretchr/testify/assert"
)

func TestBuildPlan(t *testing.T) {
	records := []envelope.ContainerRecord{
		{Name: "users", TotalItems: 99, Items: make([]envelope.Document, 2)},
		{Name: "carts", Items: make([]envelope.Document, 3), PartitionKey: &envelope.PartitionKeySchema{Paths: []string{"/tenant"}}},
		{Name: "empty", Items: []envelope.Document{}},
	}

	plan := BuildPlan(records, []string{"users", "other"})

	assert.Len(t, plan.Containers, 3)
	assert.Equal(t, "users", plan.Containers[0].Name)
	assert.Equal(t, StatusExists, plan.Containers[0].Status())
	assert.Equal(t, 2, plan.Containers[0].Items, "totals come from the items present")
	assert.Equal(t, StatusWillCreate, plan.Containers[1].Status())
	assert.Equal(t, []string{"/tenant"}, plan.Containers[1].PartitionKey.Paths)

	assert.Equal(t, PlanSummary{Containers: 3, Existing: 1, ToCreate: 2, TotalItems: 5}, plan.Summary)
	assert.Equal(t, []string{"carts", "empty"}, plan.Missing())
}

func TestBuildPlan_Empty(t *testing.T) {
	plan := BuildPlan(nil, nil)
	assert.Empty(t, plan.Containers)
	assert.Empty(t, plan.Missing())
	assert.Zero(t, plan.Summary.TotalItems)
}
