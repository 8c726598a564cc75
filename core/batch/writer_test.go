package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cosmos-isolation/core/docstore"
	"cosmos-isolation/core/docstore/mocks"
	"cosmos-isolation/core/envelope"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func docs(n int) []envelope.Document {
	out := make([]envelope.Document, n)
	for i := range out {
		out[i] = envelope.Document{"id": fmt.Sprintf("d%d", i)}
	}
	return out
}

func TestWriter_CreateAll(t *testing.T) {
	client := new(mocks.Client)
	input := docs(3)
	for _, d := range input {
		client.On("CreateItem", mock.Anything, "users", d).Return(envelope.Document{"id": d["id"], "_ts": 1}, nil).Once()
	}

	res, err := New(client, zap.NewNop()).Write(context.Background(), "users", input)
	require.NoError(t, err)
	assert.Len(t, res.Written, 3)
	assert.Empty(t, res.Failures)
	assert.Equal(t, ModeCreate, res.Mode)
	assert.Equal(t, 3, res.Attempted())
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "UpsertItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestWriter_UpsertMode(t *testing.T) {
	client := new(mocks.Client)
	input := docs(2)
	client.On("UpsertItem", mock.Anything, "users", mock.Anything).Return(envelope.Document{"id": "x"}, nil)

	res, err := New(client, zap.NewNop(), WithUpsert(true)).Write(context.Background(), "users", input)
	require.NoError(t, err)
	assert.Len(t, res.Written, 2)
	assert.Equal(t, ModeUpsert, res.Mode)
	client.AssertNumberOfCalls(t, "UpsertItem", 2)
}

func TestWriter_PerItemFailuresAreSkipped(t *testing.T) {
	client := new(mocks.Client)
	input := docs(4)
	conflict := fmt.Errorf("document d1: %w", docstore.ErrConflict)
	client.On("CreateItem", mock.Anything, "users", input[0]).Return(envelope.Document{"id": "d0"}, nil)
	client.On("CreateItem", mock.Anything, "users", input[1]).Return(nil, conflict)
	client.On("CreateItem", mock.Anything, "users", input[2]).Return(nil, errors.New("request rate too large"))
	client.On("CreateItem", mock.Anything, "users", input[3]).Return(envelope.Document{"id": "d3"}, nil)

	core, logs := observer.New(zap.WarnLevel)
	res, err := New(client, zap.New(core)).Write(context.Background(), "users", input)
	require.NoError(t, err)

	assert.Len(t, res.Written, 2)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, "d1", res.Failures[0].ID)
	assert.Equal(t, 1, res.Failures[0].Index)
	assert.ErrorIs(t, &res.Failures[0], docstore.ErrConflict)
	assert.Equal(t, "d2", res.Failures[1].ID)
	assert.Equal(t, len(input), res.Attempted())
	assert.Equal(t, 2, logs.FilterMessage("Failed to write item").Len())
}

func TestWriter_ProgressCadence(t *testing.T) {
	client := new(mocks.Client)
	client.On("CreateItem", mock.Anything, "c", mock.Anything).Return(envelope.Document{"id": "x"}, nil)

	var calls [][2]int
	w := New(client, zap.NewNop(), WithBatchSize(2), WithProgress(func(container string, done, total int) {
		assert.Equal(t, "c", container)
		calls = append(calls, [2]int{done, total})
	}))

	_, err := w.Write(context.Background(), "c", docs(5))
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{2, 5}, {4, 5}, {5, 5}}, calls)
}

func TestWriter_BatchSizeDoesNotChangeResult(t *testing.T) {
	for _, size := range []int{1, 3, 100, 0, -5} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			client := new(mocks.Client)
			client.On("CreateItem", mock.Anything, "c", mock.Anything).Return(envelope.Document{"id": "ok"}, nil)

			res, err := New(client, zap.NewNop(), WithBatchSize(size)).Write(context.Background(), "c", docs(7))
			require.NoError(t, err)
			assert.Len(t, res.Written, 7)
		})
	}
}

func TestWriter_StopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := new(mocks.Client)
	client.On("CreateItem", mock.Anything, "c", mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(envelope.Document{"id": "x"}, nil).Once()

	res, err := New(client, zap.NewNop()).Write(ctx, "c", docs(3))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, res.Written, 1)
	client.AssertNumberOfCalls(t, "CreateItem", 1)
}

func TestWriter_EmptyInput(t *testing.T) {
	client := new(mocks.Client)
	res, err := New(client, zap.NewNop()).Write(context.Background(), "c", nil)
	require.NoError(t, err)
	assert.NotNil(t, res.Written)
	assert.Zero(t, res.Attempted())
}
