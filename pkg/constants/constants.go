package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix is prepended to environment overrides, e.g. HMS_DATABASE_HOST.
	EnvPrefix = "HMS"

	ServiceName = "hospital_backend"
)
