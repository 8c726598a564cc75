package metrics

// Config controls pushing the metrics of one command run to a Pushgateway.
type Config struct {
	// PushURL is the Pushgateway address. Empty disables pushing.
	PushURL string `mapstructure:"push_url" default:""`
	// Job is the job label runs are grouped under.
	Job string `mapstructure:"job" default:"cosmos_isolation"`
	// TimeoutSeconds bounds the push request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}

// Enabled reports whether a Pushgateway is configured.
func (c Config) Enabled() bool {
	return c.PushURL != ""
}
