package config

const (
	// CurrentV is the currently supported config schema version.
	CurrentV = 1

	defaultStorageDriver = "sqlite"
	defaultSQLitePath    = "memoflow.db"

	defaultAPIListen = ":8080"

	defaultEnrichmentProvider = "openai"
	defaultEnrichTimeoutSecs  = 30
	defaultEnrichWorkers      = 3
	defaultEnrichQueueSize    = 256

	defaultEventsProvider = "nop"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Driver:     defaultStorageDriver,
			SQLitePath: defaultSQLitePath,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Enrichment: EnrichmentConfig{
			Provider:       defaultEnrichmentProvider,
			TimeoutSeconds: defaultEnrichTimeoutSecs,
			Workers:        defaultEnrichWorkers,
			QueueSize:      defaultEnrichQueueSize,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
		},
	}
}
