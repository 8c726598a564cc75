package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"cosmos-isolation/core/confirm"
	"cosmos-isolation/core/docstore"
	"cosmos-isolation/core/docstore/mocks"
	"cosmos-isolation/core/envelope"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient() *mocks.Client {
	client := new(mocks.Client)
	client.On("Database").Return("orders")
	return client
}

// recorder answers from a queue and remembers every prompt.
type recorder struct {
	answers []bool
	prompts []string
}

func (r *recorder) Confirm(prompt string) bool {
	r.prompts = append(r.prompts, prompt)
	if len(r.answers) == 0 {
		return false
	}
	a := r.answers[0]
	r.answers = r.answers[1:]
	return a
}

// verifyingClient adds a schema check to the mock client.
type verifyingClient struct {
	*mocks.Client
	err error
}

func (v *verifyingClient) Verify(context.Context) error { return v.err }

func TestTestConnection(t *testing.T) {
	ctx := context.Background()
	notFound := docstore.ErrNotFound

	t.Run("lists containers", func(t *testing.T) {
		client := newClient()
		client.On("ListContainers", mock.Anything).Return([]string{"a", "b"}, nil)

		conn, err := NewService(client, nil, confirm.Always(false), zap.NewNop()).TestConnection(ctx, false, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, conn.Containers)
		assert.False(t, conn.CreatedDatabase)
	})

	t.Run("missing database without flag", func(t *testing.T) {
		client := newClient()
		client.On("ListContainers", mock.Anything).Return(nil, notFound)

		_, err := NewService(client, new(mocks.Admin), confirm.Always(true), zap.NewNop()).TestConnection(ctx, false, false)
		require.Error(t, err)
		assert.ErrorIs(t, err, docstore.ErrNotFound)
		assert.Contains(t, err.Error(), "--create-database")
	})

	t.Run("creates database and re-lists", func(t *testing.T) {
		client := newClient()
		client.On("ListContainers", mock.Anything).Return(nil, notFound).Once()
		client.On("ListContainers", mock.Anything).Return([]string{}, nil).Once()
		adm := new(mocks.Admin)
		adm.On("CreateDatabase", mock.Anything, "orders").Return(nil)
		oracle := &recorder{answers: []bool{true}}

		conn, err := NewService(client, adm, oracle, zap.NewNop()).TestConnection(ctx, true, false)
		require.NoError(t, err)
		assert.True(t, conn.CreatedDatabase)
		assert.Empty(t, conn.Containers)
		assert.Equal(t, []string{"Do you want to create database 'orders'?"}, oracle.prompts)
		adm.AssertExpectations(t)
	})

	t.Run("declined creation", func(t *testing.T) {
		client := newClient()
		client.On("ListContainers", mock.Anything).Return(nil, notFound)
		adm := new(mocks.Admin)

		_, err := NewService(client, adm, confirm.Always(false), zap.NewNop()).TestConnection(ctx, true, false)
		assert.ErrorIs(t, err, confirm.ErrCancelled)
		adm.AssertNotCalled(t, "CreateDatabase", mock.Anything, mock.Anything)
	})

	t.Run("force skips prompt", func(t *testing.T) {
		client := newClient()
		client.On("ListContainers", mock.Anything).Return(nil, notFound).Once()
		client.On("ListContainers", mock.Anything).Return([]string{"a"}, nil).Once()
		adm := new(mocks.Admin)
		adm.On("CreateDatabase", mock.Anything, "orders").Return(nil)
		oracle := &recorder{}

		conn, err := NewService(client, adm, oracle, zap.NewNop()).TestConnection(ctx, true, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, conn.Containers)
		assert.Empty(t, oracle.prompts)
	})

	t.Run("verification failure", func(t *testing.T) {
		client := &verifyingClient{Client: newClient(), err: errors.New("schema check failed")}

		_, err := NewService(client, nil, confirm.Always(true), zap.NewNop()).TestConnection(ctx, false, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema check failed")
		client.AssertNotCalled(t, "ListContainers", mock.Anything)
	})
}

func TestStatus(t *testing.T) {
	modified := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client := newClient()
	client.On("ListContainers", mock.Anything).Return([]string{"users", "empty", "broken", "legacy"}, nil)
	client.On("GetContainer", mock.Anything, "users").Return(&docstore.ContainerProperties{
		Name:         "users",
		PartitionKey: &envelope.PartitionKeySchema{Paths: []string{"/tenant"}},
		LastModified: modified,
		ETag:         `"1"`,
	}, nil)
	client.On("GetContainer", mock.Anything, "empty").Return(&docstore.ContainerProperties{
		Name:         "empty",
		PartitionKey: &envelope.PartitionKeySchema{Paths: []string{"/id"}},
	}, nil)
	client.On("GetContainer", mock.Anything, "broken").Return(&docstore.ContainerProperties{Name: "broken"}, nil)
	client.On("GetContainer", mock.Anything, "legacy").Return(&docstore.ContainerProperties{Name: "legacy"}, nil)
	client.On("CountItems", mock.Anything, "users").Return(42, nil)
	client.On("CountItems", mock.Anything, "empty").Return(0, nil)
	client.On("CountItems", mock.Anything, "broken").Return(0, errors.New("throttled"))
	client.On("CountItems", mock.Anything, "legacy").Return(3, nil)

	report, err := NewService(client, nil, confirm.Always(false), zap.NewNop()).Status(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Containers, 4)
	assert.Equal(t, "broken", report.Containers[0].Name)
	assert.False(t, report.Containers[0].Counted())
	assert.Equal(t, "throttled", report.Containers[0].CountErr)

	users := report.Containers[3]
	assert.Equal(t, "users", users.Name)
	assert.Equal(t, 42, users.Items)
	assert.Equal(t, modified, users.LastModified)
	assert.Equal(t, `"1"`, users.ETag)

	assert.Equal(t, 45, report.TotalItems)
	assert.Equal(t, []string{"empty"}, report.Empty)
	assert.Equal(t, []string{"legacy"}, report.NoPartitionKey)
	assert.Len(t, report.Recommendations(), 2)
}

func TestStatus_ListFailure(t *testing.T) {
	client := newClient()
	client.On("ListContainers", mock.Anything).Return(nil, docstore.ErrNotFound)

	_, err := NewService(client, nil, confirm.Always(false), zap.NewNop()).Status(context.Background())
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestListDatabases(t *testing.T) {
	adm := new(mocks.Admin)
	adm.On("ListDatabases", mock.Anything).Return([]string{"zeta", "alpha"}, nil)

	names, err := NewService(newClient(), adm, confirm.Always(false), zap.NewNop()).ListDatabases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestDeleteDatabase(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a name", func(t *testing.T) {
		adm := new(mocks.Admin)
		_, err := NewService(newClient(), adm, confirm.Always(true), zap.NewNop()).DeleteDatabase(ctx, "", true)
		assert.ErrorIs(t, err, ErrDatabaseRequired)
		adm.AssertNotCalled(t, "ListDatabases", mock.Anything)
	})

	t.Run("missing database", func(t *testing.T) {
		adm := new(mocks.Admin)
		adm.On("GetDatabase", mock.Anything, "ghost").Return(nil, docstore.ErrNotFound)

		_, err := NewService(newClient(), adm, confirm.Always(true), zap.NewNop()).DeleteDatabase(ctx, "ghost", false)
		assert.ErrorIs(t, err, docstore.ErrNotFound)
		adm.AssertNotCalled(t, "DeleteDatabase", mock.Anything, mock.Anything)
	})

	t.Run("asks twice when containers exist", func(t *testing.T) {
		adm := new(mocks.Admin)
		adm.On("GetDatabase", mock.Anything, "orders").Return(&docstore.DatabaseInfo{Name: "orders", Containers: []string{"a"}}, nil)
		adm.On("DeleteDatabase", mock.Anything, "orders").Return(nil)
		oracle := &recorder{answers: []bool{true, true}}

		_, err := NewService(newClient(), adm, oracle, zap.NewNop()).DeleteDatabase(ctx, "orders", false)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"Are you sure you want to delete database 'orders'?",
			"Are you absolutely sure? This will delete ALL data permanently!",
		}, oracle.prompts)
		adm.AssertExpectations(t)
	})

	t.Run("asks once when empty", func(t *testing.T) {
		adm := new(mocks.Admin)
		adm.On("GetDatabase", mock.Anything, "orders").Return(&docstore.DatabaseInfo{Name: "orders"}, nil)
		adm.On("DeleteDatabase", mock.Anything, "orders").Return(nil)
		oracle := &recorder{answers: []bool{true}}

		_, err := NewService(newClient(), adm, oracle, zap.NewNop()).DeleteDatabase(ctx, "orders", false)
		require.NoError(t, err)
		assert.Len(t, oracle.prompts, 1)
	})

	t.Run("second decline cancels", func(t *testing.T) {
		adm := new(mocks.Admin)
		adm.On("GetDatabase", mock.Anything, "orders").Return(&docstore.DatabaseInfo{Name: "orders", Containers: []string{"a"}}, nil)
		oracle := &recorder{answers: []bool{true, false}}

		_, err := NewService(newClient(), adm, oracle, zap.NewNop()).DeleteDatabase(ctx, "orders", false)
		assert.ErrorIs(t, err, confirm.ErrCancelled)
		adm.AssertNotCalled(t, "DeleteDatabase", mock.Anything, mock.Anything)
	})

	t.Run("force skips prompts", func(t *testing.T) {
		adm := new(mocks.Admin)
		adm.On("GetDatabase", mock.Anything, "orders").Return(&docstore.DatabaseInfo{Name: "orders", Containers: []string{"a"}}, nil)
		adm.On("DeleteDatabase", mock.Anything, "orders").Return(nil)
		oracle := &recorder{}

		_, err := NewService(newClient(), adm, oracle, zap.NewNop()).DeleteDatabase(ctx, "orders", true)
		require.NoError(t, err)
		assert.Empty(t, oracle.prompts)
	})
}
