package config

const EnvPrefix = "WARDSTOCK"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and deployment docs.
const (
	EnvAppEnv        = "WARDSTOCK_APP_ENV"
	EnvPort          = "WARDSTOCK_APP_PORT"
	EnvSpreadsheetID = "WARDSTOCK_SPREADSHEET_ID"
	EnvSheetsAPIKey  = "WARDSTOCK_SHEETS_API_KEY"
	EnvScriptURL     = "WARDSTOCK_SCRIPT_URL"
	EnvPlatformAppID = "WARDSTOCK_PLATFORM_APP_ID"
	EnvRedisURL      = "WARDSTOCK_REDIS_URL"
	EnvJWTSecret     = "WARDSTOCK_JWT_SECRET"
	EnvJWTIssuer     = "WARDSTOCK_JWT_ISSUER"
	EnvJWTExpMins    = "WARDSTOCK_JWT_EXPIRATION_MINUTES"
	EnvPollInterval  = "WARDSTOCK_SYNC_POLL_INTERVAL"
)
