// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Backends BackendsConfig `mapstructure:"backends"`
	Rerank   RerankConfig   `mapstructure:"rerank"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type BackendsConfig struct {
	Default       string              `mapstructure:"default"`
	Manticore     ManticoreConfig     `mapstructure:"manticore"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type ManticoreConfig struct {
	URL     string `mapstructure:"url"`
	Table   string `mapstructure:"table"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
	URL       string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Table          string `mapstructure:"table"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // seconds; candidate cache expiry
}

// RerankConfig mirrors the reranker weights so deployments can tune
// them without a rebuild.
type RerankConfig struct {
	PhoneticWeight  float64  `mapstructure:"phonetic_weight"`
	FuzzyWeight     float64  `mapstructure:"fuzzy_weight"`
	ClassWeight     float64  `mapstructure:"class_weight"`
	DominantWeight  float64  `mapstructure:"dominant_weight"`
	FamousWeight    float64  `mapstructure:"famous_weight"`
	ExactScore      float64  `mapstructure:"exact_score"`
	MaxEditDistance int      `mapstructure:"max_edit_distance"`
	FamousMarks     []string `mapstructure:"famous_marks"`
	TokenPhonetics  bool     `mapstructure:"token_phonetics"`
}

type EngineConfig struct {
	Timeout int `mapstructure:"timeout"` // milliseconds, per analysis call
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
