// Package config provides configuration management for cosmos-isolation.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Command-line flags override the loaded values.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Cosmos: store driver, endpoint, key, database, insecure TLS (COSMOS_*)
//   - Database: SQL connection details for the sqlite and mysql drivers (DATABASE_*)
//   - Storage: S3/MinIO credentials for s3:// envelope locations (STORAGE_*)
//   - Log: Logging level and format (LOG_*)
//   - Server: HTTP API port, API key, status cache (SERVER_*)
//   - Metrics: Pushgateway for dump and upload runs (METRICS_*)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Cosmos.Endpoint)
package config
