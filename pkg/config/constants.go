package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "SWIFTBASKET"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SWIFTBASKET_DB_DSN"
	EnvDBHost = "SWIFTBASKET_DB_HOST"
	EnvDBUser = "SWIFTBASKET_DB_USER"
	EnvDBName = "SWIFTBASKET_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
