package cmd

import (
	"bytes"
	"errors"
	"testing"

	"cosmos-isolation/core/envelope"
	"cosmos-isolation/core/reconcile"
	"cosmos-isolation/feature/admin"
	"cosmos-isolation/feature/upload"

	"github.com/stretchr/testify/assert"
)

func TestPartitionKeyLabel(t *testing.T) {
	assert.Equal(t, "None", partitionKeyLabel(nil))
	assert.Equal(t, "None", partitionKeyLabel(&envelope.PartitionKeySchema{}))
	assert.Equal(t, "/tenant, /id", partitionKeyLabel(&envelope.PartitionKeySchema{Paths: []string{"/tenant", "/id"}}))
}

func TestRenderer_Status(t *testing.T) {
	var buf bytes.Buffer
	report := &admin.StatusReport{
		Database: "orders",
		Containers: []admin.ContainerStatus{
			{Name: "broken", CountErr: "throttled"},
			{Name: "users", Items: 1234, PartitionKey: &envelope.PartitionKeySchema{Paths: []string{"/id"}}, ETag: `"e1"`},
		},
		TotalItems: 1234,
		Empty:      []string{"x"},
	}

	newRenderer(&buf).status(report, true)
	out := buf.String()
	assert.Contains(t, out, "broken")
	assert.Contains(t, out, "error")
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, `"e1"`)
	assert.Contains(t, out, "Recommendations")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderer_UploadDegraded(t *testing.T) {
	var buf bytes.Buffer
	plan := reconcile.BuildPlan([]envelope.ContainerRecord{
		envelope.NewRecord("a", nil, []envelope.Document{{"id": "1"}}),
		envelope.NewRecord("b", nil, nil),
	}, []string{"a"})

	report := reconcile.NewReport()
	report.Add(&reconcile.ContainerResult{Name: "a", State: reconcile.StateSucceeded, Attempted: 1, Uploaded: 1})
	report.Add(&reconcile.ContainerResult{Name: "b", State: reconcile.StateFailed, Err: errors.New("cannot create container b")})

	newRenderer(&buf).uploadResult(&upload.Result{Database: "orders", Plan: plan, Report: report})
	out := buf.String()
	assert.Contains(t, out, reconcile.StatusExists)
	assert.Contains(t, out, reconcile.StatusWillCreate)
	assert.Contains(t, out, "failed: cannot create container b")
	assert.Contains(t, out, "Upload completed with warnings. 1 containers failed")
}

func TestRenderer_UploadNil(t *testing.T) {
	var buf bytes.Buffer
	newRenderer(&buf).uploadResult(nil)
	assert.Empty(t, buf.String())
}
