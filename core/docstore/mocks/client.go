package mocks

import (
	"context"

	"cosmos-isolation/core/docstore"
	"cosmos-isolation/core/envelope"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of docstore.Client
type Client struct {
	mock.Mock
}

func (m *Client) Database() string {
	args := m.Called()
	return args.String(0)
}

func (m *Client) ListContainers(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if names, ok := args.Get(0).([]string); ok {
		return names, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetContainer(ctx context.Context, name string) (*docstore.ContainerProperties, error) {
	args := m.Called(ctx, name)
	if props, ok := args.Get(0).(*docstore.ContainerProperties); ok {
		return props, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateContainer(ctx context.Context, name string, pk envelope.PartitionKeySchema) error {
	args := m.Called(ctx, name, pk)
	return args.Error(0)
}

func (m *Client) CountItems(ctx context.Context, container string) (int, error) {
	args := m.Called(ctx, container)
	return args.Int(0), args.Error(1)
}

// QueryItems feeds the []envelope.Document in the first return value to fn.
func (m *Client) QueryItems(ctx context.Context, container string, fn func(envelope.Document) error) error {
	args := m.Called(ctx, container)
	if docs, ok := args.Get(0).([]envelope.Document); ok {
		for _, d := range docs {
			if err := fn(d); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

func (m *Client) CreateItem(ctx context.Context, container string, doc envelope.Document) (envelope.Document, error) {
	args := m.Called(ctx, container, doc)
	if out, ok := args.Get(0).(envelope.Document); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) UpsertItem(ctx context.Context, container string, doc envelope.Document) (envelope.Document, error) {
	args := m.Called(ctx, container, doc)
	if out, ok := args.Get(0).(envelope.Document); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

// Admin is a mock implementation of docstore.Admin
type Admin struct {
	mock.Mock
}

func (m *Admin) ListDatabases(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if names, ok := args.Get(0).([]string); ok {
		return names, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Admin) GetDatabase(ctx context.Context, name string) (*docstore.DatabaseInfo, error) {
	args := m.Called(ctx, name)
	if info, ok := args.Get(0).(*docstore.DatabaseInfo); ok {
		return info, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Admin) CreateDatabase(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *Admin) DeleteDatabase(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
