/*
config.go - Environment configuration

PURPOSE:
  Loads runtime settings for the batch orchestrator and HTTP server from
  the environment, with an optional .env file for local development.

VARIABLES:
  DB_DRIVER          "postgres" (default) or "sqlite3"
  DB_DSN             Full DSN; when set it wins over the DB_* parts
  DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD
                     Composed into a postgres DSN when DB_DSN is empty
  OVERRIDE_ANTES     Optional fixed ANTES factor for batch runs
  OVERRIDE_POS_IPCA  Optional fixed POS IPCA factor for batch runs
  BATCH_WORKERS      Worker count for the batch runner (default 4)
  HTTP_PORT          Port for the API server (default 8000)
  LOG_LEVEL          zap level: debug, info, warn, error (default info)

SEE ALSO:
  - batch/runner.go: consumes the override and worker settings
  - cmd/precatorio: consumes HTTP_PORT and LOG_LEVEL
*/
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/revisa/precatorio/correcao"
)

// Config holds every environment-driven setting.
type Config struct {
	DBDriver string
	DBDSN    string

	OverrideAntes   *decimal.Decimal
	OverridePosIPCA *decimal.Decimal

	BatchWorkers int
	HTTPPort     int
	LogLevel     string
}

// Load reads the environment, optionally seeded from a .env file in the
// working directory. A missing .env is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBDriver: getEnv("DB_DRIVER", "postgres"),
		DBDSN:    os.Getenv("DB_DSN"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DBDSN == "" && cfg.DBDriver == "postgres" {
		cfg.DBDSN = fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_NAME", "esaj"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_SSLMODE", "disable"))
	}

	var err error
	if cfg.BatchWorkers, err = getEnvInt("BATCH_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.HTTPPort, err = getEnvInt("HTTP_PORT", 8000); err != nil {
		return nil, err
	}

	if cfg.OverrideAntes, err = getEnvOverride("OVERRIDE_ANTES"); err != nil {
		return nil, err
	}
	if cfg.OverridePosIPCA, err = getEnvOverride("OVERRIDE_POS_IPCA"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s: valor invalido %q", key, raw)
	}
	return v, nil
}

func getEnvOverride(key string) (*decimal.Decimal, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	return correcao.ParseOverride(key, raw)
}
