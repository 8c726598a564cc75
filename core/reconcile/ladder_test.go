package reconcile

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

func pk(paths ...string) envelope.PartitionKeySchema {
	return envelope.PartitionKeySchema{Paths: paths}
}

func TestLadder(t *testing.T) {
	tests := []struct {
		name   string
		schema *envelope.PartitionKeySchema
		want   []Strategy
		first  []string
	}{
		{"NoSchema", nil, []Strategy{StrategyID}, []string{"/id"}},
		{"EmptyPaths", &envelope.PartitionKeySchema{}, []Strategy{StrategyID}, []string{"/id"}},
		{"Single", &envelope.PartitionKeySchema{Paths: []string{"/tenant"}, Kind: "Hash"}, []Strategy{StrategySchema, StrategyFallbackPK}, []string{"/tenant"}},
		{"Composite", &envelope.PartitionKeySchema{Paths: []string{"/a", "/b"}}, []Strategy{StrategySchema, StrategyFallbackPK}, []string{"/a", "/b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := Ladder(tt.schema)
			var got []Strategy
			for _, a := range attempts {
				got = append(got, a.Strategy)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.first, attempts[0].Schema.Paths)
			if len(attempts) > 1 {
				assert.Equal(t, []string{"/pk"}, attempts[1].Schema.Paths)
			}
		})
	}
}

func TestEnsureContainer_UsesRecordSchema(t *testing.T) {
	client := new(mocks.Client)
	client.On("CreateContainer", mock.Anything, "carts", pk("/tenant")).Return(nil).Once()

	strategy, err := NewReconciler(client, zap.NewNop(), nil).
		EnsureContainer(context.Background(), "carts", &envelope.PartitionKeySchema{Paths: []string{"/tenant"}})
	require.NoError(t, err)
	assert.Equal(t, StrategySchema, strategy)
	client.AssertExpectations(t)
}

func TestEnsureContainer_FallsBackToPK(t *testing.T) {
	client := new(mocks.Client)
	client.On("CreateContainer", mock.Anything, "carts", pk("/a", "/b")).Return(errors.New("hierarchical keys unsupported")).Once()
	client.On("CreateContainer", mock.Anything, "carts", pk("/pk")).Return(nil).Once()

	core, logs := observer.New(zap.WarnLevel)
	strategy, err := NewReconciler(client, zap.New(core), nil).
		EnsureContainer(context.Background(), "carts", &envelope.PartitionKeySchema{Paths: []string{"/a", "/b"}})
	require.NoError(t, err)
	assert.Equal(t, StrategyFallbackPK, strategy)
	assert.Equal(t, 1, logs.FilterMessageSnippet("must carry a 'pk' field").Len())
	client.AssertExpectations(t)
}

func TestEnsureContainer_SchemaLessUsesID(t *testing.T) {
	client := new(mocks.Client)
	client.On("CreateContainer", mock.Anything, "logs", pk("/id")).Return(nil).Once()

	strategy, err := NewReconciler(client, zap.NewNop(), nil).EnsureContainer(context.Background(), "logs", nil)
	require.NoError(t, err)
	assert.Equal(t, StrategyID, strategy)
	client.AssertNotCalled(t, "CreateContainer", mock.Anything, "logs", pk("/pk"))
}

func TestEnsureContainer_AllRungsFail(t *testing.T) {
	client := new(mocks.Client)
	client.On("CreateContainer", mock.Anything, "carts", pk("/tenant")).Return(errors.New("quota exceeded")).Once()
	client.On("CreateContainer", mock.Anything, "carts", pk("/pk")).Return(errors.New("forbidden")).Once()

	_, err := NewReconciler(client, zap.NewNop(), nil).
		EnsureContainer(context.Background(), "carts", &envelope.PartitionKeySchema{Paths: []string{"/tenant"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot create container carts")
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Contains(t, err.Error(), "forbidden")
}

func TestEnsureContainer_IDFailureIsFinal(t *testing.T) {
	client := new(mocks.Client)
	client.On("CreateContainer", mock.Anything, "logs", pk("/id")).Return(errors.New("denied")).Once()

	_, err := NewReconciler(client, zap.NewNop(), nil).EnsureContainer(context.Background(), "logs", nil)
	assert.ErrorContains(t, err, "denied")
	client.AssertNumberOfCalls(t, "CreateContainer", 1)
}

func TestEnsureContainer_ConflictMeansReady(t *testing.T) {
	client := new(mocks.Client)
	client.On("CreateContainer", mock.Anything, "users", pk("/id")).
		Return(fmt.Errorf("container users: %w", docstore.ErrConflict)).Once()

	strategy, err := NewReconciler(client, zap.NewNop(), nil).EnsureContainer(context.Background(), "users", nil)
	require.NoError(t, err)
	assert.Equal(t, StrategyExisting, strategy)
}

func TestEnsureContainer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := new(mocks.Client)

	_, err := NewReconciler(client, zap.NewNop(), nil).EnsureContainer(ctx, "users", nil)
	assert.ErrorIs(t, err, context.Canceled)
	client.AssertNotCalled(t, "CreateContainer", mock.Anything, mock.Anything, mock.Anything)
}
