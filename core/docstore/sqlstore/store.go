package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cosmos-isolation/core/database"
	"cosmos-isolation/core/docstore"
	"cosmos-isolation/core/envelope"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxPartitionKeyPaths = 3

// Store is a document store backed by SQL tables.
type Store struct {
	db       *gorm.DB
	database string
}

// New binds a store to a database name. Call Migrate once before first use.
func New(db *gorm.DB, databaseName string) *Store {
	return &Store{db: db, database: databaseName}
}

// Migrate creates or updates the backing tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&databaseRow{}, &containerRow{}, &documentRow{}); err != nil {
		return fmt.Errorf("failed to migrate document tables: %w", err)
	}
	return nil
}

// Verify reports backing tables that are missing columns.
func (s *Store) Verify(ctx context.Context) error {
	tables := make([]string, 0, len(schemaColumns))
	for table := range schemaColumns {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var problems []string
	for _, table := range tables {
		missing, err := database.MissingColumns(s.db.WithContext(ctx), table, schemaColumns[table])
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("%s missing %s", table, strings.Join(missing, ", ")))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("schema check failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (s *Store) Database() string { return s.database }

func (s *Store) ListContainers(ctx context.Context) ([]string, error) {
	if err := s.requireDatabase(ctx, s.database); err != nil {
		return nil, err
	}
	var names []string
	err := s.db.WithContext(ctx).Model(&containerRow{}).
		Where("database_name = ?", s.database).
		Order("name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	return names, nil
}

func (s *Store) GetContainer(ctx context.Context, name string) (*docstore.ContainerProperties, error) {
	row, err := s.container(ctx, name)
	if err != nil {
		return nil, err
	}
	props := &docstore.ContainerProperties{
		Name:         row.Name,
		LastModified: row.UpdatedAt,
		ETag:         row.ETag,
	}
	if row.PartitionKey != "" {
		var pk envelope.PartitionKeySchema
		if err := json.Unmarshal([]byte(row.PartitionKey), &pk); err != nil {
			return nil, fmt.Errorf("corrupt partition key for container %s: %w", name, err)
		}
		props.PartitionKey = &pk
	}
	return props, nil
}

func (s *Store) CreateContainer(ctx context.Context, name string, pk envelope.PartitionKeySchema) error {
	if err := validatePartitionKey(pk); err != nil {
		return err
	}
	if err := s.requireDatabase(ctx, s.database); err != nil {
		return err
	}

	if pk.Kind == "" {
		pk.Kind = "Hash"
		if len(pk.Paths) > 1 {
			pk.Kind = "MultiHash"
		}
	}
	if pk.Version == 0 {
		pk.Version = 2
	}
	raw, err := json.Marshal(pk)
	if err != nil {
		return err
	}

	row := containerRow{
		DatabaseName: s.database,
		Name:         name,
		PartitionKey: string(raw),
		ETag:         newETag(),
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return fmt.Errorf("failed to create container %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("container %s: %w", name, docstore.ErrConflict)
	}
	return nil
}

func (s *Store) CountItems(ctx context.Context, container string) (int, error) {
	if _, err := s.container(ctx, container); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&documentRow{}).
		Where("database_name = ? AND container_name = ?", s.database, container).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count items in %s: %w", container, err)
	}
	return int(n), nil
}

func (s *Store) QueryItems(ctx context.Context, container string, fn func(envelope.Document) error) error {
	if _, err := s.container(ctx, container); err != nil {
		return err
	}

	var rows []documentRow
	var fnErr error
	res := s.db.WithContext(ctx).
		Where("database_name = ? AND container_name = ?", s.database, container).
		FindInBatches(&rows, 200, func(tx *gorm.DB, batch int) error {
			for i := range rows {
				doc, err := s.decorate(&rows[i])
				if err != nil {
					fnErr = err
					return err
				}
				if err := fn(doc); err != nil {
					fnErr = err
					return err
				}
			}
			return nil
		})
	if fnErr != nil {
		return fnErr
	}
	if res.Error != nil {
		return fmt.Errorf("failed to query items in %s: %w", container, res.Error)
	}
	return nil
}

func (s *Store) CreateItem(ctx context.Context, container string, doc envelope.Document) (envelope.Document, error) {
	return s.write(ctx, container, doc, false)
}

func (s *Store) UpsertItem(ctx context.Context, container string, doc envelope.Document) (envelope.Document, error) {
	return s.write(ctx, container, doc, true)
}

func (s *Store) write(ctx context.Context, container string, doc envelope.Document, upsert bool) (envelope.Document, error) {
	id, err := docstore.DocumentID(doc)
	if err != nil {
		return nil, err
	}
	if _, err := s.container(ctx, container); err != nil {
		return nil, err
	}

	body, err := json.Marshal(envelope.StripInternal(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to encode document %s: %w", id, err)
	}

	row := documentRow{
		DatabaseName:  s.database,
		ContainerName: container,
		DocID:         id,
		Body:          string(body),
		ETag:          newETag(),
	}

	tx := s.db.WithContext(ctx)
	if upsert {
		tx = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "database_name"}, {Name: "container_name"}, {Name: "doc_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"body", "e_tag", "updated_at"}),
		})
	} else {
		var n int64
		if err := tx.Model(&documentRow{}).
			Where("database_name = ? AND container_name = ? AND doc_id = ?", s.database, container, id).
			Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to check document %s: %w", id, err)
		}
		if n > 0 {
			return nil, fmt.Errorf("document %s in %s: %w", id, container, docstore.ErrConflict)
		}
	}

	if err := tx.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("document %s in %s: %w", id, container, docstore.ErrConflict)
		}
		return nil, fmt.Errorf("failed to write document %s: %w", id, err)
	}

	var stored documentRow
	if err := s.db.WithContext(ctx).
		Where("database_name = ? AND container_name = ? AND doc_id = ?", s.database, container, id).
		First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to read back document %s: %w", id, err)
	}
	return s.decorate(&stored)
}

func (s *Store) decorate(row *documentRow) (envelope.Document, error) {
	doc, err := decodeBody(row.Body)
	if err != nil {
		return nil, fmt.Errorf("corrupt document %s in %s: %w", row.DocID, row.ContainerName, err)
	}
	doc["_rid"] = fmt.Sprintf("%x", row.Seq)
	doc["_self"] = fmt.Sprintf("dbs/%s/colls/%s/docs/%s", row.DatabaseName, row.ContainerName, row.DocID)
	doc["_etag"] = row.ETag
	doc["_attachments"] = "attachments/"
	doc["_ts"] = json.Number(fmt.Sprint(row.UpdatedAt.Unix()))
	return doc, nil
}

func (s *Store) container(ctx context.Context, name string) (*containerRow, error) {
	var row containerRow
	err := s.db.WithContext(ctx).
		Where("database_name = ? AND name = ?", s.database, name).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("container %s in %s: %w", name, s.database, docstore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read container %s: %w", name, err)
	}
	return &row, nil
}

func (s *Store) requireDatabase(ctx context.Context, name string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&databaseRow{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to read database %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("database %s: %w", name, docstore.ErrNotFound)
	}
	return nil
}

func validatePartitionKey(pk envelope.PartitionKeySchema) error {
	if len(pk.Paths) == 0 {
		return fmt.Errorf("partition key requires at least one path")
	}
	if len(pk.Paths) > maxPartitionKeyPaths {
		return fmt.Errorf("partition key supports at most %d paths, got %d", maxPartitionKeyPaths, len(pk.Paths))
	}
	for _, p := range pk.Paths {
		if !strings.HasPrefix(p, "/") || len(p) < 2 {
			return fmt.Errorf("invalid partition key path %q", p)
		}
	}
	return nil
}

func decodeBody(body string) (envelope.Document, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var doc envelope.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = envelope.Document{}
	}
	return doc, nil
}

func newETag() string {
	return `"` + uuid.NewString() + `"`
}
