package authorize

import "github.com/Alijeyrad/hospital_backend/config"

// Config holds configuration for the authorization system
type Config struct {
	// CasbinModelPath is optional; DefaultModel is used when empty.
	CasbinModelPath string

	// EnableAudit enables audit logging for all authorization decisions
	EnableAudit bool

	// PersistPolicies stores policies through the ent adapter and watches
	// Postgres for changes made by other instances.
	PersistPolicies bool

	// DSN of the casbin database, required when PersistPolicies is set.
	DSN string
}

// DefaultConfig returns sensible defaults for authorization configuration
func DefaultConfig() Config {
	return Config{
		EnableAudit:     true,
		PersistPolicies: false,
	}
}

// FromCentralConfig converts central config.AuthorizationConfig to package Config
func FromCentralConfig(c config.AuthorizationConfig, dsn string) Config {
	return Config{
		CasbinModelPath: c.CasbinModelPath,
		EnableAudit:     c.EnableAudit,
		PersistPolicies: c.PersistPolicies,
		DSN:             dsn,
	}
}
