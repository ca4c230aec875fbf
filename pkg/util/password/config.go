package password

import (
	"fmt"
	"strings"

	"github.com/Alijeyrad/hospital_backend/config"
)

const (
	algorithmArgon2id = "argon2id"
	lowMemoryCapKiB   = 32 * 1024
)

// Config is the operator-facing form of Params. Zero fields keep whatever
// parameters are currently in effect.
type Config struct {
	Algorithm   string
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// LowMemory caps memory at 32 MiB regardless of MemoryKiB.
	LowMemory bool
}

// LowMemoryConfig trades memory for an extra pass. Tests use it too.
func LowMemoryConfig() Config {
	return Config{MemoryKiB: lowMemoryCapKiB, Iterations: 4, LowMemory: true}
}

func FromCentralConfig(c config.PasswordConfig) Config {
	return Config{
		Algorithm:   c.Algorithm,
		MemoryKiB:   c.MemoryKiB,
		Iterations:  c.Iterations,
		Parallelism: c.Parallelism,
		SaltLength:  c.SaltLength,
		KeyLength:   c.KeyLength,
		LowMemory:   c.LowMemoryMode,
	}
}

// Configure replaces the parameters used by Hash and NeedsRehash. Existing
// hashes keep verifying because each one records its own parameters.
func Configure(c Config) error {
	if a := strings.ToLower(c.Algorithm); a != "" && a != algorithmArgon2id {
		return fmt.Errorf("password: unsupported algorithm %q", c.Algorithm)
	}

	paramsMu.Lock()
	defer paramsMu.Unlock()

	next := *defaultParams
	if c.MemoryKiB > 0 {
		next.Memory = c.MemoryKiB
	}
	if c.LowMemory && next.Memory > lowMemoryCapKiB {
		next.Memory = lowMemoryCapKiB
	}
	if c.Iterations > 0 {
		next.Iterations = c.Iterations
	}
	if c.Parallelism > 0 {
		next.Parallelism = c.Parallelism
	}
	if c.SaltLength > 0 {
		next.SaltLength = c.SaltLength
	}
	if c.KeyLength > 0 {
		next.KeyLength = c.KeyLength
	}
	defaultParams = &next
	return nil
}
