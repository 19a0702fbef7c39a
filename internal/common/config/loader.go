// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like BACKENDS_MANTICORE_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if cfg.Backends.Elasticsearch.URL == "" && len(cfg.Backends.Elasticsearch.Addresses) > 0 {
		cfg.Backends.Elasticsearch.URL = cfg.Backends.Elasticsearch.Addresses[0]
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or any ancestor up
// to the module root, so tests in nested packages pick it up too.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "trademark-engine"
	}
	if cfg.Backends.Default == "" {
		cfg.Backends.Default = "manticore"
	}
	if cfg.Backends.Manticore.URL == "" {
		cfg.Backends.Manticore.URL = "http://127.0.0.1:9308"
	}
	if cfg.Backends.Manticore.Table == "" {
		cfg.Backends.Manticore.Table = "trademarks"
	}
	if cfg.Backends.Manticore.Timeout <= 0 {
		cfg.Backends.Manticore.Timeout = 30000
	}
	if cfg.Backends.Elasticsearch.Index == "" {
		cfg.Backends.Elasticsearch.Index = "trademarks"
	}
	if cfg.Backends.Postgres.Table == "" {
		cfg.Backends.Postgres.Table = "trademarks"
	}
	if cfg.Backends.Postgres.SSLMode == "" {
		cfg.Backends.Postgres.SSLMode = "disable"
	}
	if cfg.Backends.Redis.TTL <= 0 {
		cfg.Backends.Redis.TTL = 300
	}
	if cfg.Engine.Timeout <= 0 {
		cfg.Engine.Timeout = 5000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}
