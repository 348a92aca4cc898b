package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadEnvFiles seeds the process environment from ".env.<mode>" and ".env"
// in the working directory. Variables that are already set win; missing
// files are skipped.
func loadEnvFiles(mode string) {
	_ = godotenv.Load(".env." + mode)
	_ = godotenv.Load(".env")
}

// parseEnv overlays values from the process environment onto config.
func parseEnv(config *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		if strings.Contains(port, ":") {
			config.HTTPAddr = port
		} else {
			config.HTTPAddr = ":" + port
		}
	}

	setString(&config.DatabaseDSN, os.Getenv("DATABASE_URL"))
	setString(&config.SecretKey, os.Getenv("JWT_SECRET"))
	setString(&config.StoreDriver, os.Getenv("STORE_DRIVER"))
	setString(&config.TodoReadPolicy, os.Getenv("TODO_READ_POLICY"))

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST %q: %w", v, err)
		}
		config.BcryptCost = cost
	}

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		config.TokenValidityDuration = ttl
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		config.CORSAllowedOrigins = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
