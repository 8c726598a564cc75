package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"cosmos-isolation/core/confirm"
	"cosmos-isolation/core/docstore"
	"cosmos-isolation/core/docstore/mocks"
	"cosmos-isolation/core/envelope"
	"cosmos-isolation/core/metrics"
	"cosmos-isolation/feature/admin"
	"cosmos-isolation/feature/dump"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) (*fiber.App, *mocks.Client) {
	t.Helper()
	client := new(mocks.Client)
	client.On("Database").Return("orders")

	reg, m, err := metrics.NewRegistry()
	require.NoError(t, err)

	logger := zap.NewNop()
	feature := NewFeature(
		admin.NewService(client, nil, confirm.Always(false), logger),
		dump.NewService(client, logger, m),
		reg, logger, 0,
	)

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app, client
}

func TestLoader(t *testing.T) {
	feature := NewFeature(nil, nil, nil, zap.NewNop(), 0)
	assert.Equal(t, "api", feature.Name())
	assert.True(t, feature.IsEnabled())
}

func TestHandleHealth(t *testing.T) {
	app, client := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	client.AssertNotCalled(t, "ListContainers", mock.Anything)
}

func TestHandleContainers(t *testing.T) {
	app, client := setupTestApp(t)
	client.On("ListContainers", mock.Anything).Return([]string{"users"}, nil)
	client.On("GetContainer", mock.Anything, "users").Return(&docstore.ContainerProperties{
		Name:         "users",
		PartitionKey: &envelope.PartitionKeySchema{Paths: []string{"/id"}},
	}, nil)
	client.On("CountItems", mock.Anything, "users").Return(0, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/containers", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "orders", body["database"])
	assert.Len(t, body["containers"], 1)
	assert.Len(t, body["recommendations"], 1)
}

func TestHandleContainers_NotFound(t *testing.T) {
	app, client := setupTestApp(t)
	client.On("ListContainers", mock.Anything).Return(nil, docstore.ErrNotFound)

	resp, err := app.Test(httptest.NewRequest("GET", "/containers", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleExport(t *testing.T) {
	app, client := setupTestApp(t)
	client.On("ListContainers", mock.Anything).Return([]string{"users", "orders"}, nil)
	client.On("GetContainer", mock.Anything, "users").Return(&docstore.ContainerProperties{
		Name:         "users",
		PartitionKey: &envelope.PartitionKeySchema{Paths: []string{"/id"}},
	}, nil)
	client.On("CountItems", mock.Anything, "users").Return(1, nil)
	client.On("QueryItems", mock.Anything, "users").Return([]envelope.Document{
		{"id": "u1", "_etag": "x", "_ts": json.Number("1")},
	}, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/export?containers=users", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	env, shape, err := envelope.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, envelope.ShapeContainers, shape)
	assert.Equal(t, []string{"users"}, env.Names())
	assert.Equal(t, envelope.Document{"id": "u1"}, env.Containers[0].Items[0])
	client.AssertNotCalled(t, "QueryItems", mock.Anything, "orders")
}

func TestHandleExport_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		setup  func(*mocks.Client)
		status int
	}{
		{
			name:   "Empty selection",
			query:  "?containers=,",
			setup:  func(*mocks.Client) {},
			status: fiber.StatusBadRequest,
		},
		{
			name:  "Unknown container",
			query: "?containers=ghost",
			setup: func(c *mocks.Client) {
				c.On("ListContainers", mock.Anything).Return([]string{"users"}, nil)
			},
			status: fiber.StatusNotFound,
		},
		{
			name:  "Store failure",
			query: "",
			setup: func(c *mocks.Client) {
				c.On("ListContainers", mock.Anything).Return(nil, errors.New("connection refused"))
			},
			status: fiber.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, client := setupTestApp(t)
			tt.setup(client)

			resp, err := app.Test(httptest.NewRequest("GET", "/export"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestHandleMetrics(t *testing.T) {
	app, client := setupTestApp(t)
	client.On("ListContainers", mock.Anything).Return([]string{"users"}, nil)
	client.On("GetContainer", mock.Anything, "users").Return(&docstore.ContainerProperties{Name: "users"}, nil)
	client.On("CountItems", mock.Anything, "users").Return(1, nil)
	client.On("QueryItems", mock.Anything, "users").Return([]envelope.Document{{"id": "u1"}}, nil)

	_, err := app.Test(httptest.NewRequest("GET", "/export", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cosmos_isolation_documents_exported_total")
}

func TestService_StatusRefresh(t *testing.T) {
	client := new(mocks.Client)
	client.On("Database").Return("orders")
	client.On("ListContainers", mock.Anything).Return([]string{}, nil)

	svc := NewService(admin.NewService(client, nil, confirm.Always(false), zap.NewNop()), nil, nil, zap.NewNop(), time.Hour)
	ctx := context.Background()

	_, err := svc.Status(ctx, false)
	require.NoError(t, err)
	_, err = svc.Status(ctx, false)
	require.NoError(t, err)
	client.AssertNumberOfCalls(t, "ListContainers", 1)

	_, err = svc.Status(ctx, true)
	require.NoError(t, err)
	client.AssertNumberOfCalls(t, "ListContainers", 2)
}
