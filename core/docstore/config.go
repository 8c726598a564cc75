package docstore

// Driver names accepted in Config.Driver.
const (
	DriverCosmos = "cosmos"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config holds the document store connection settings.
type Config struct {
	// Driver selects the backend: cosmos, sqlite or mysql.
	Driver string `mapstructure:"driver" default:"cosmos"`
	// Endpoint is the Cosmos DB account URL.
	Endpoint string `mapstructure:"endpoint" default:""`
	// Key is the Cosmos DB account key.
	Key string `mapstructure:"key" default:""`
	// Database is the target database name.
	Database string `mapstructure:"database" default:""`
	// AllowInsecure skips TLS verification, e.g. for the local emulator.
	AllowInsecure bool `mapstructure:"allow_insecure" default:"false"`
	// TimeoutSeconds bounds each HTTP request to the store.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
}

// IsSQL reports whether the driver is one of the gorm-backed stores.
func (c Config) IsSQL() bool {
	return c.Driver == DriverSQLite || c.Driver == DriverMySQL
}

// MissingConnection returns the names of empty settings needed to reach the
// account. SQL drivers need none.
func (c Config) MissingConnection() []string {
	if c.IsSQL() {
		return nil
	}
	var missing []string
	if c.Endpoint == "" {
		missing = append(missing, "endpoint (--endpoint/-e or COSMOS_ENDPOINT)")
	}
	if c.Key == "" {
		missing = append(missing, "key (--key/-k or COSMOS_KEY)")
	}
	return missing
}

// Missing returns the names of required settings that are empty.
// SQL drivers need only a database name.
func (c Config) Missing() []string {
	missing := c.MissingConnection()
	if c.Database == "" {
		missing = append(missing, "database (--database/-d or COSMOS_DATABASE)")
	}
	return missing
}
