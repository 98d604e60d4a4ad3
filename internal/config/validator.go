package config

import (
	"fmt"
	"os"
	"strings"
)

// ExpectedEnvSchemaVersion is the .env layout this build understands
const ExpectedEnvSchemaVersion = "1.0"

// RequiredEnvVars must be set for the server regardless of backend
var RequiredEnvVars = []string{
	"ENV_SCHEMA_VERSION",
	"API_KEY",
}

// BackendEnvVars lists the extra variables each store backend needs
var BackendEnvVars = map[string][]string{
	StoreBackendPostgres: {"DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME"},
	StoreBackendRedis:    {"REDIS_ADDR"},
}

// Example values shipped in .env.example that must never reach a real deployment
const (
	exampleDBPassword = "change_this_secure_password"
	exampleAPIKey     = "generate_with_openssl_rand_hex_32"
)

// ValidateEnv checks the schema version and that every variable the selected
// backend needs is present.
func ValidateEnv() error {
	switch schemaVersion := os.Getenv("ENV_SCHEMA_VERSION"); {
	case schemaVersion == "":
		return fmt.Errorf("ENV_SCHEMA_VERSION is not set - please update your .env file to include this field (expected: %s)", ExpectedEnvSchemaVersion)
	case schemaVersion != ExpectedEnvSchemaVersion:
		return fmt.Errorf("ENV_SCHEMA_VERSION mismatch: expected %s, got %s - your .env file may be outdated", ExpectedEnvSchemaVersion, schemaVersion)
	}

	backend := strings.ToLower(os.Getenv("STORE_BACKEND"))
	required := append(append([]string(nil), RequiredEnvVars...), BackendEnvVars[backend]...)

	var missing []string
	for _, envVar := range required {
		if os.Getenv(envVar) == "" {
			missing = append(missing, envVar)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateEnvWithWarnings runs ValidateEnv and then lists settings that work
// but are probably a mistake.
func ValidateEnvWithWarnings() ([]string, error) {
	if err := ValidateEnv(); err != nil {
		return nil, err
	}

	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if os.Getenv("DB_PASSWORD") == exampleDBPassword {
		warn("DB_PASSWORD appears to be using the example value - please use a secure password")
	}
	if os.Getenv("API_KEY") == exampleAPIKey {
		warn("API_KEY appears to be using the example value - generate a secure key with: openssl rand -hex 32")
	}
	if os.Getenv("AMQP_URL") == "" {
		warn("AMQP_URL is not set - reward notifications are disabled")
	}

	backend := strings.ToLower(getEnv("STORE_BACKEND", StoreBackendMemory))
	if backend == StoreBackendMemory && strings.EqualFold(os.Getenv("ENVIRONMENT"), "production") {
		warn("STORE_BACKEND is %s in production - progression is lost on restart", StoreBackendMemory)
	}

	catalogPath := getEnv("CATALOG_PATH", ConfigPathCatalog)
	if _, err := os.Stat(catalogPath); err != nil {
		warn("CATALOG_PATH %s is not readable (%v) - the engine will refuse to start", catalogPath, err)
	}

	return warnings, nil
}
