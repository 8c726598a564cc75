package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"cosmos-isolation/core/docstore"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) ListDatabases(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.WithContext(ctx).Model(&databaseRow{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	return names, nil
}

func (s *Store) GetDatabase(ctx context.Context, name string) (*docstore.DatabaseInfo, error) {
	var row databaseRow
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database %s: %w", name, docstore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read database %s: %w", name, err)
	}

	var containers []string
	if err := s.db.WithContext(ctx).Model(&containerRow{}).
		Where("database_name = ?", name).
		Order("name").
		Pluck("name", &containers).Error; err != nil {
		return nil, fmt.Errorf("failed to list containers in %s: %w", name, err)
	}

	return &docstore.DatabaseInfo{
		Name:         row.Name,
		Containers:   containers,
		LastModified: row.UpdatedAt,
		ETag:         row.ETag,
	}, nil
}

func (s *Store) CreateDatabase(ctx context.Context, name string) error {
	row := databaseRow{Name: name, ETag: newETag()}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

func (s *Store) DeleteDatabase(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("name = ?", name).Delete(&databaseRow{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete database %s: %w", name, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("database %s: %w", name, docstore.ErrNotFound)
		}
		if err := tx.Where("database_name = ?", name).Delete(&documentRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete documents of %s: %w", name, err)
		}
		if err := tx.Where("database_name = ?", name).Delete(&containerRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete containers of %s: %w", name, err)
		}
		return nil
	})
}
