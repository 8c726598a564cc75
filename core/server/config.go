package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// StatusCacheSeconds is how long a container status snapshot is served
	// before the store is queried again. Zero disables caching.
	StatusCacheSeconds int `mapstructure:"status_cache_seconds" default:"30"`
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	return ":" + c.Port
}

// StatusCacheTTL returns the status snapshot lifetime.
func (c Config) StatusCacheTTL() time.Duration {
	if c.StatusCacheSeconds <= 0 {
		return 0
	}
	return time.Duration(c.StatusCacheSeconds) * time.Second
}
