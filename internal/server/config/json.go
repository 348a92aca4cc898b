package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gotodo/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Durations
// use timex.Duration so both "15m" and integer nanoseconds are accepted.
// Zero values leave the current setting untouched.
type JsonConfig struct {
	HTTPAddr              string         `json:"http_addr"`
	StoreDriver           string         `json:"store_driver"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	BcryptCost            int            `json:"bcrypt_cost"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	TodoReadPolicy        string         `json:"todo_read_policy"`
	CORSAllowedOrigins    []string       `json:"cors_allowed_origins"`
	ShutdownTimeout       timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays values from the JSON file at path onto config.
// An empty path loads nothing.
func parseJson(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("failed to unmarshal config file at %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.StoreDriver, c.StoreDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.TodoReadPolicy, c.TodoReadPolicy)
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
