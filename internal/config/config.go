// Package config loads the server configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables, then command-line flags. Validate runs last.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string `yaml:"port"`

	// DatabasePath is the SQLite file backing the cache store.
	DatabasePath string `yaml:"database_path"`

	Auth      AuthConfig      `yaml:"auth"`
	Directory DirectoryConfig `yaml:"directory"`
}

// AuthConfig configures browser sessions and offline login.
type AuthConfig struct {
	// JWTSecret signs session cookies. At least 32 characters.
	JWTSecret string `yaml:"jwt_secret"`

	// CookieSecure marks the session cookie Secure. Disable only for local
	// development over plain HTTP.
	CookieSecure bool `yaml:"cookie_secure"`

	// BcryptCost is the cost of the cached credential hash, 4..14.
	BcryptCost int `yaml:"bcrypt_cost"`
}

// DirectoryConfig configures the remote user directory.
type DirectoryConfig struct {
	// URL is the API base URL.
	URL string `yaml:"url"`

	// APIKey is sent as x-api-key when set.
	APIKey string `yaml:"api_key"`

	// Timeout bounds each directory request.
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:         "8080",
		DatabasePath: "userdesk.db",
		Auth: AuthConfig{
			CookieSecure: true,
			BcryptCost:   12,
		},
		Directory: DirectoryConfig{
			URL:     "https://reqres.in/api",
			Timeout: 10 * time.Second,
		},
	}
}

// Load builds the configuration for args (without the program name).
// getenv is usually os.Getenv. The YAML file is read from --config, or from
// USERDESK_CONFIG when the flag is absent.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	flagSet := pflag.NewFlagSet("userdesk", pflag.ContinueOnError)
	configPath := flagSet.String("config", getenv("USERDESK_CONFIG"), "path to a YAML config file")
	port := flagSet.String("port", "", "HTTP listen port")
	dbPath := flagSet.String("database", "", "SQLite database path")
	dirURL := flagSet.String("directory-url", "", "user directory API base URL")
	insecure := flagSet.Bool("insecure-cookies", false, "send the session cookie over plain HTTP")
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}

	if *configPath != "" {
		if err := cfg.loadFile(*configPath); err != nil {
			return nil, fmt.Errorf("load config %s: %w", *configPath, err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	if *port != "" {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *dirURL != "" {
		cfg.Directory.URL = *dirURL
	}
	if *insecure {
		cfg.Auth.CookieSecure = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges a YAML file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setString("PORT", &c.Port)
	setString("DATABASE_PATH", &c.DatabasePath)
	setString("JWT_SECRET", &c.Auth.JWTSecret)
	setString("DIRECTORY_URL", &c.Directory.URL)
	setString("DIRECTORY_API_KEY", &c.Directory.APIKey)

	// Secure cookies stay on unless explicitly disabled.
	if getenv("COOKIE_SECURE") == "false" {
		c.Auth.CookieSecure = false
	}

	if v := getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		c.Auth.BcryptCost = cost
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret (JWT_SECRET) is required"))
	} else if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 32 characters for HMAC-SHA256 security"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between 4 and 14, got %d", c.Auth.BcryptCost))
	}
	if c.Directory.URL == "" {
		errs = append(errs, errors.New("directory.url is required"))
	}
	if c.Directory.Timeout <= 0 {
		errs = append(errs, errors.New("directory.timeout must be positive"))
	}

	return errors.Join(errs...)
}
