package cosmos

import (
	"context"
	"errors"

	"cosmos-isolation/core/docstore"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
)

func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	var names []string
	pager := c.client.NewQueryDatabasesPager("SELECT * FROM d", nil)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		for _, props := range resp.Databases {
			names = append(names, props.ID)
		}
	}
	return names, nil
}

func (c *Client) GetDatabase(ctx context.Context, name string) (*docstore.DatabaseInfo, error) {
	db, err := c.client.NewDatabase(name)
	if err != nil {
		return nil, err
	}
	resp, err := db.Read(ctx, nil)
	if err != nil {
		return nil, mapError(err)
	}

	info := &docstore.DatabaseInfo{Name: name}
	if props := resp.DatabaseProperties; props != nil {
		info.LastModified = props.LastModified
		if props.ETag != nil {
			info.ETag = string(*props.ETag)
		}
	}

	pager := db.NewQueryContainersPager("SELECT * FROM c", nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		for _, props := range page.Containers {
			info.Containers = append(info.Containers, props.ID)
		}
	}
	return info, nil
}

func (c *Client) CreateDatabase(ctx context.Context, name string) error {
	_, err := c.client.CreateDatabase(ctx, azcosmos.DatabaseProperties{ID: name}, nil)
	if err == nil {
		return nil
	}
	if err = mapError(err); errors.Is(err, docstore.ErrConflict) {
		return nil
	}
	return err
}

func (c *Client) DeleteDatabase(ctx context.Context, name string) error {
	db, err := c.client.NewDatabase(name)
	if err != nil {
		return err
	}
	if _, err := db.Delete(ctx, nil); err != nil {
		return mapError(err)
	}
	return nil
}
