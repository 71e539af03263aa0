package config

// EnvPrefix is passed to envconfig; individual fields carry explicit keys so
// the prefix only matters for fields without one.
const EnvPrefix = "FOODCOURT"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared between Load, tests and tooling.
const (
	EnvAppEnv     = "FOODCOURT_APP_ENV"
	EnvPort       = "FOODCOURT_APP_PORT"
	EnvDBDSN      = "FOODCOURT_DB_DSN"
	EnvDBHost     = "FOODCOURT_DB_HOST"
	EnvDBPort     = "FOODCOURT_DB_PORT"
	EnvDBUser     = "FOODCOURT_DB_USER"
	EnvDBPassword = "FOODCOURT_DB_PASSWORD"
	EnvDBName     = "FOODCOURT_DB_NAME"
	EnvRedisURL   = "FOODCOURT_REDIS_URL"
	EnvJWTSecret  = "FOODCOURT_JWT_SECRET"
	EnvJWTIssuer  = "FOODCOURT_JWT_ISSUER"
	EnvJWTExpMins = "FOODCOURT_JWT_EXPIRATION_MINUTES"
	EnvQRBaseURL  = "FOODCOURT_QR_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
