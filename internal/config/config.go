package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/spf13/viper"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

type SessionConfig struct {
	Path string `mapstructure:"path"`
}

type CatalogConfig struct {
	Categories []string `mapstructure:"categories"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
	File  string `mapstructure:"file"`
}

// ServerConfig configures the stub API started by `storefront stub-api`.
type ServerConfig struct {
	Addr     string `mapstructure:"addr"`
	SeedFile string `mapstructure:"seed_file"`
}

// DefaultSessionPath is where the session database lives when not configured.
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".storefront", "session.db")
	}
	return filepath.Join(home, ".storefront", "session.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.retry.max_attempts", 3)
	v.SetDefault("api.retry.initial_backoff", 250*time.Millisecond)
	v.SetDefault("api.retry.max_backoff", 4*time.Second)
	v.SetDefault("session.path", DefaultSessionPath())
	v.SetDefault("catalog.categories", models.DefaultCategories())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.seed_file", "")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	// STOREFRONT_API_BASE_URL overrides api.base_url, and so on
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from a .env file, the environment and an optional
// config file. An explicit path must exist; otherwise storefront.yaml is
// searched for and its absence is not an error. The result is not validated.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("storefront")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
		v.AddConfigPath("$HOME/.storefront/")
		v.AddConfigPath("/etc/storefront/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromReader loads configuration from r. Environment overrides still apply.
func LoadFromReader(r io.Reader, configType string) (*Config, error) {
	v := newViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

// Validate checks the settings the API client relies on. The stub API
// command only needs the server section and skips it.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required (set STOREFRONT_API_BASE_URL or api.base_url)")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.Retry.MaxAttempts < 1 {
		return fmt.Errorf("api.retry.max_attempts must be at least 1, got %d", c.API.Retry.MaxAttempts)
	}
	if c.API.Retry.InitialBackoff < 0 || c.API.Retry.InitialBackoff > c.API.Retry.MaxBackoff {
		return fmt.Errorf("api.retry.initial_backoff (%s) must be between 0 and max_backoff (%s)",
			c.API.Retry.InitialBackoff, c.API.Retry.MaxBackoff)
	}
	if len(c.Catalog.Categories) == 0 {
		return errors.New("catalog.categories must not be empty")
	}
	for _, name := range c.Catalog.Categories {
		if name == models.CategoryAll {
			return fmt.Errorf("catalog.categories must not contain the reserved name %q", models.CategoryAll)
		}
	}
	if c.Session.Path == "" {
		return errors.New("session.path is required")
	}
	return nil
}
