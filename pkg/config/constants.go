package config

// Environment variable names, kept in one place so tests and docs stay in
// sync with the envconfig tags.
const (
	EnvAppEnv        = "STOREFRONT_APP_ENV"
	EnvLogLevel      = "STOREFRONT_LOG_LEVEL"
	EnvAPIBaseURL    = "STOREFRONT_API_BASE_URL"
	EnvAPITimeout    = "STOREFRONT_API_TIMEOUT"
	EnvStateBackend  = "STOREFRONT_STATE_BACKEND"
	EnvStateFile     = "STOREFRONT_STATE_FILE"
	EnvStateRedisURL = "STOREFRONT_STATE_REDIS_URL"
	EnvStateSession  = "STOREFRONT_STATE_SESSION"
	EnvStubPort      = "STOREFRONT_STUB_PORT"
)
