package config

// Config represents the persistent memoflow configuration, stored as
// memoflow.toml. The TOML layout uses sections for logical grouping.
type Config struct {
	Version    int              `mapstructure:"version" toml:"version"`
	Storage    StorageConfig    `mapstructure:"storage" toml:"storage"`
	API        APIConfig        `mapstructure:"api" toml:"api"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment" toml:"enrichment"`
	Events     EventsConfig     `mapstructure:"events" toml:"events"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	// Driver is one of "sqlite", "postgres", or "memory".
	Driver string `mapstructure:"driver" toml:"driver,omitempty"`

	// SQLitePath is the database file path for the sqlite driver
	// (":memory:" for an in-memory database).
	SQLitePath string `mapstructure:"sqlite_path" toml:"sqlite_path,omitempty"`

	// PostgresURL is the connection string for the postgres driver.
	PostgresURL string `mapstructure:"postgres_url" toml:"postgres_url,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `mapstructure:"listen" toml:"listen,omitempty"`
}

// EnrichmentConfig holds enrichment provider settings. The OpenAI API key
// is deliberately not part of the file: it is read from the
// OPENAI_API_KEY environment variable, and its absence switches the
// service into the permanent enrichment-disabled mode.
type EnrichmentConfig struct {
	// Provider is one of "openai", "ollama", or "disabled".
	Provider string `mapstructure:"provider" toml:"provider,omitempty"`

	// Model overrides the provider's default model.
	Model string `mapstructure:"model" toml:"model,omitempty"`

	// Target overrides the provider's API base URL.
	Target string `mapstructure:"target" toml:"target,omitempty"`

	// TimeoutSeconds bounds each enrichment call.
	TimeoutSeconds uint `mapstructure:"timeout_seconds" toml:"timeout_seconds,omitempty"`

	// Workers is the number of background enrichment workers.
	Workers uint `mapstructure:"workers" toml:"workers,omitempty"`

	// QueueSize is the capacity of the enrichment job queue.
	QueueSize uint `mapstructure:"queue_size" toml:"queue_size,omitempty"`
}

// EventsConfig holds lifecycle event stream settings.
type EventsConfig struct {
	// Provider is one of "nop" or "kafka".
	Provider string `mapstructure:"provider" toml:"provider,omitempty"`

	// Brokers is the Kafka bootstrap broker list.
	Brokers []string `mapstructure:"brokers" toml:"brokers,omitempty"`

	// Topic is the Kafka topic for memo events.
	Topic string `mapstructure:"topic" toml:"topic,omitempty"`
}
