package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Databases   map[string]DatabaseConfig `json:"databases"`
	Redis       RedisConfig               `json:"redis"`
	Auth        AuthConfig                `json:"auth"`
	Providers   map[string]ProviderConfig `json:"providers"`
}

type BasicConfig struct {
	ServerAddress       string `json:"server_address"`
	StagingDir          string `json:"staging_dir"`
	StagingTTL          int    `json:"staging_ttl_minutes"`
	StagingSweepMinutes int    `json:"staging_sweep_interval_minutes"`
	LogLevel            string `json:"log_level"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	Params   string `json:"params"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type AuthConfig struct {
	Secret   string `json:"secret"`
	TokenTTL int    `json:"token_ttl_minutes"`
}

// ProviderConfig describes one external backend endpoint.
type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

// Provider names used throughout the service.
const (
	ProviderDeepgram    = "deepgram"
	ProviderHuggingFace = "huggingface"
)

// DefaultSigningSecret is the development fallback used when neither the
// config file nor SECRET_KEY provides a signing secret. Running with it in
// production is a deployment mistake; main logs a warning when it is used.
const DefaultSigningSecret = "mysecretkey"

// Load reads configuration from the provided path (defaults to config.json)
// and applies environment overrides for secrets.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if len(cfg.Databases) == 0 {
		return nil, fmt.Errorf("databases must be configured")
	}
	for name, db := range cfg.Databases {
		if db.DSN != "" && db.DSN != ":memory:" && !filepath.IsAbs(db.DSN) {
			db.DSN = filepath.Join(filepath.Dir(absPath), db.DSN)
			cfg.Databases[name] = db
		}
	}

	cfg.applyEnv()
	return &cfg, nil
}

// applyEnv lets environment variables override file-provided secrets so
// credentials can stay out of the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		c.Auth.Secret = v
	}
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	if v := os.Getenv("DEEPGRAM_API_KEY"); v != "" {
		p := c.Providers[ProviderDeepgram]
		p.APIKey = v
		c.Providers[ProviderDeepgram] = p
	}
	if v := os.Getenv("HF_KEY"); v != "" {
		p := c.Providers[ProviderHuggingFace]
		p.APIKey = v
		c.Providers[ProviderHuggingFace] = p
	}
}
