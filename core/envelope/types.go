package envelope

// Document is one stored record. Keys are strings; values are anything JSON can
// carry. Numbers decoded by this package are json.Number so that large integer
// identifiers round-trip unchanged.
type Document map[string]any

// PartitionKeySchema describes a container's partition key definition as
// reported by the store. Only Paths is required; Kind and Version are carried
// through when known.
type PartitionKeySchema struct {
	// Paths is the ordered list of partition key paths, e.g. ["/tenantId"].
	Paths []string `json:"paths"`

	// Kind is the store's key kind ("Hash", "MultiHash").
	Kind string `json:"kind,omitempty"`

	// Version is the store's partition key version.
	Version int `json:"version,omitempty"`
}

// HasPaths reports whether the schema names at least one path.
func (s *PartitionKeySchema) HasPaths() bool {
	return s != nil && len(s.Paths) > 0
}

// ContainerRecord holds the exported contents of one container.
type ContainerRecord struct {
	// Name is unique within an envelope.
	Name string `json:"name"`

	// TotalItems equals len(Items) for envelopes written by this tool.
	// Older files may disagree; readers use len(Items).
	TotalItems int `json:"total_items"`

	// PartitionKey is nil when the key definition is unknown.
	PartitionKey *PartitionKeySchema `json:"partition_key"`

	// Items are the filtered documents.
	Items []Document `json:"items"`
}

// Envelope is the portable multi-container file format.
type Envelope struct {
	// Database is the source database name. Informational only on replay.
	Database string `json:"database"`

	// ExportedAt is a best-effort timestamp string.
	ExportedAt string `json:"exported_at"`

	// TotalContainers and TotalItems are redundant counts kept for readers.
	TotalContainers int `json:"total_containers"`
	TotalItems      int `json:"total_items"`

	// Containers are kept in dump order.
	Containers []ContainerRecord `json:"containers"`
}

// New returns an empty envelope for the given database.
func New(database, exportedAt string) *Envelope {
	return &Envelope{
		Database:   database,
		ExportedAt: exportedAt,
		Containers: []ContainerRecord{},
	}
}

// NewRecord builds a record whose TotalItems matches its items.
// A nil items slice is normalised to an empty one so it encodes as [].
func NewRecord(name string, pk *PartitionKeySchema, items []Document) ContainerRecord {
	if items == nil {
		items = []Document{}
	}
	return ContainerRecord{
		Name:         name,
		TotalItems:   len(items),
		PartitionKey: pk,
		Items:        items,
	}
}

// Add appends a record and refreshes the envelope totals.
func (e *Envelope) Add(rec ContainerRecord) {
	e.Containers = append(e.Containers, rec)
	e.Recount()
}

// Recount recomputes TotalContainers and TotalItems from Containers.
func (e *Envelope) Recount() {
	e.TotalContainers = len(e.Containers)
	e.TotalItems = CountItems(e.Containers)
}

// Names returns container names in envelope order.
func (e *Envelope) Names() []string {
	names := make([]string, 0, len(e.Containers))
	for _, c := range e.Containers {
		names = append(names, c.Name)
	}
	return names
}

// CountItems sums len(Items) across records.
func CountItems(records []ContainerRecord) int {
	total := 0
	for _, r := range records {
		total += len(r.Items)
	}
	return total
}
