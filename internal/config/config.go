package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

const (
	HeadStorePostgres = "postgres"
	HeadStoreFile     = "file"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	DBMaxOpenConns     int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int           `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int           `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
	StoreTimeout       time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	IdempotencySweepInterval time.Duration `env:"IDEMPOTENCY_SWEEP_INTERVAL" envDefault:"1h"`

	HeadStore    string `env:"HEAD_STORE" envDefault:"postgres"`
	HeadStoreDir string `env:"HEAD_STORE_DIR" envDefault:"./data"`

	RedisURL  string        `env:"REDIS_URL"`
	LockTTL   time.Duration `env:"LOCK_TTL" envDefault:"30s"`
	LockRetry time.Duration `env:"LOCK_RETRY" envDefault:"50ms"`

	VerifyRateRPS   float64 `env:"VERIFY_RATE_RPS" envDefault:"5"`
	VerifyRateBurst int     `env:"VERIFY_RATE_BURST" envDefault:"10"`

	EventSourceURL     string        `env:"EVENT_SOURCE_URL"`
	EventSourceTimeout time.Duration `env:"EVENT_SOURCE_TIMEOUT" envDefault:"5s"`

	SourceBreakerFailures uint32        `env:"SOURCE_BREAKER_FAILURES" envDefault:"5"`
	SourceBreakerTimeout  time.Duration `env:"SOURCE_BREAKER_TIMEOUT" envDefault:"30s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.HeadStore != HeadStorePostgres && cfg.HeadStore != HeadStoreFile {
		return nil, fmt.Errorf("config.Load: HEAD_STORE must be %q or %q, got %q",
			HeadStorePostgres, HeadStoreFile, cfg.HeadStore)
	}
	if budget := cfg.checkpointBudget(); cfg.LockTTL <= budget {
		return nil, fmt.Errorf("config.Load: LOCK_TTL %s must exceed the checkpoint's read and write timeouts (%s)",
			cfg.LockTTL, budget)
	}
	return &cfg, nil
}

// checkpointBudget is the longest a checkpoint can hold its tenant lock: one
// event read followed by one head write.
func (c Config) checkpointBudget() time.Duration {
	return max(c.StoreTimeout, c.EventSourceTimeout) + c.StoreTimeout
}
