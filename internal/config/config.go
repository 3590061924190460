package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the runtime settings of the ledger engine. Every value comes
// from the environment, optionally seeded from a .env file.
type Config struct {
	LogLevel     string
	Workers      int
	PostgresDSN  string
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads a .env file from envFile (ignored when missing) and then the
// process environment, which takes precedence.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LEDGER_WORKERS", 1)
	v.SetDefault("KAFKA_TOPIC", "account_snapshots")

	cfg := &Config{
		LogLevel:     v.GetString("LOG_LEVEL"),
		Workers:      v.GetInt("LEDGER_WORKERS"),
		PostgresDSN:  v.GetString("POSTGRES_DSN"),
		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:   v.GetString("KAFKA_TOPIC"),
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
