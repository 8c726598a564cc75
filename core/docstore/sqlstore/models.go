package sqlstore

import "time"

type databaseRow struct {
	Name      string `gorm:"primaryKey;size:255"`
	ETag      string `gorm:"size:64"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (databaseRow) TableName() string { return "cosmos_databases" }

type containerRow struct {
	DatabaseName string `gorm:"primaryKey;size:255"`
	Name         string `gorm:"primaryKey;size:255"`
	PartitionKey string `gorm:"type:text"`
	ETag         string `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (containerRow) TableName() string { return "cosmos_containers" }

type documentRow struct {
	Seq           uint64 `gorm:"primaryKey;autoIncrement"`
	DatabaseName  string `gorm:"size:255;uniqueIndex:idx_cosmos_document"`
	ContainerName string `gorm:"size:255;uniqueIndex:idx_cosmos_document"`
	DocID         string `gorm:"size:255;uniqueIndex:idx_cosmos_document"`
	Body          string `gorm:"type:text"`
	ETag          string `gorm:"size:64"`
	UpdatedAt     time.Time
}

func (documentRow) TableName() string { return "cosmos_documents" }

// schemaColumns lists the columns Verify expects per table.
var schemaColumns = map[string][]string{
	"cosmos_databases":  {"name", "e_tag", "created_at", "updated_at"},
	"cosmos_containers": {"database_name", "name", "partition_key", "e_tag"},
	"cosmos_documents":  {"seq", "database_name", "container_name", "doc_id", "body", "e_tag", "updated_at"},
}
