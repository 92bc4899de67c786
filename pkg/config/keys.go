package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "sallati"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "SALLATI_DB_DSN"
	EnvDBHost = "SALLATI_DB_HOST"
	EnvDBUser = "SALLATI_DB_USER"
	EnvDBName = "SALLATI_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
