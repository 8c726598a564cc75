package upload

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"cosmos-isolation/core/confirm"
	"cosmos-isolation/core/database"
	"cosmos-isolation/core/docstore/sqlstore"
	"cosmos-isolation/core/envelope"
	"cosmos-isolation/feature/dump"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedSource(t *testing.T, db *gorm.DB) *sqlstore.Store {
	t.Helper()
	ctx := context.Background()
	src := sqlstore.New(db, "source")
	require.NoError(t, src.Migrate())
	require.NoError(t, src.CreateDatabase(ctx, "source"))

	require.NoError(t, src.CreateContainer(ctx, "users", envelope.PartitionKeySchema{Paths: []string{"/tenant"}}))
	require.NoError(t, src.CreateContainer(ctx, "carts", envelope.PartitionKeySchema{Paths: []string{"/tenant", "/user"}}))
	require.NoError(t, src.CreateContainer(ctx, "empty", envelope.PartitionKeySchema{Paths: []string{"/id"}}))

	for _, doc := range []envelope.Document{
		{"id": "u1", "tenant": "acme", "big": json.Number("12345678901234567890")},
		{"id": "u2", "tenant": "acme", "tags": []any{"a", "b"}},
		{"id": "u3", "tenant": "globex", "profile": map[string]any{"age": json.Number("41")}},
	} {
		_, err := src.CreateItem(ctx, "users", doc)
		require.NoError(t, err)
	}
	for _, doc := range []envelope.Document{
		{"id": "c1", "tenant": "acme", "user": "u1"},
		{"id": "c2", "tenant": "globex", "user": "u3"},
	} {
		_, err := src.CreateItem(ctx, "carts", doc)
		require.NoError(t, err)
	}
	return src
}

func TestRoundTrip_DumpThenUpload(t *testing.T) {
	ctx := context.Background()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	src := seedSource(t, db)

	loc, err := envelope.ParseLocation(filepath.Join(t.TempDir(), "export.json"))
	require.NoError(t, err)

	exported, err := dump.NewService(src, zap.NewNop(), nil).Dump(ctx, dump.Options{Selection: dump.Selection{All: true}}, loc, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 5, exported.Envelope.TotalItems)
	assert.Equal(t, 3, exported.Envelope.TotalContainers)

	dst := sqlstore.New(db, "target")
	svc := NewService(dst, dst, confirm.Always(false), zap.NewNop(), nil)
	res, err := svc.UploadFrom(ctx, loc, nil, Options{
		Upsert:           true,
		Force:            true,
		CreateContainers: true,
		CreateDatabase:   true,
	})
	require.NoError(t, err)

	summary := res.Report.Summary()
	assert.Equal(t, exported.Envelope.TotalItems, summary.Uploaded)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Zero(t, summary.Failed)

	props, err := dst.GetContainer(ctx, "carts")
	require.NoError(t, err)
	assert.Equal(t, []string{"/tenant", "/user"}, props.PartitionKey.Paths)

	var users []envelope.Document
	require.NoError(t, dst.QueryItems(ctx, "users", func(doc envelope.Document) error {
		users = append(users, envelope.StripInternal(doc))
		return nil
	}))
	assert.Len(t, users, 3)
	assert.Contains(t, users, envelope.Document{"id": "u1", "tenant": "acme", "big": json.Number("12345678901234567890")})

	// a second upsert run rewrites the same documents
	res, err = svc.UploadFrom(ctx, loc, nil, Options{Upsert: true, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Report.Summary().Uploaded)
	count, err := dst.CountItems(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRoundTrip_CreateModeRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	src := seedSource(t, db)

	res, err := dump.NewService(src, zap.NewNop(), nil).Export(ctx, dump.Options{Selection: dump.Selection{Names: []string{"users"}}})
	require.NoError(t, err)

	// replaying into the source database collides with every document
	svc := NewService(src, src, confirm.Always(true), zap.NewNop(), nil)
	up, err := svc.Upload(ctx, res.Envelope, Options{})
	require.NoError(t, err)

	cr := up.Report.Results[0]
	assert.Equal(t, 3, cr.Attempted)
	assert.Zero(t, cr.Uploaded)
	assert.Equal(t, 3, up.Report.Summary().FailedItems)
}
