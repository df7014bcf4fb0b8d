// Package config resolves database connection settings from YAML files,
// .env files and the process environment, and renders them as a lib/pq
// connection string.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// SUPAQ_HOST, SUPAQ_PASSWORD.
const EnvPrefix = "SUPAQ_"

// Config holds the resolved connection settings. The core consumes only
// these scalar values; environment-variable names never leak past this
// package.
type Config struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	Database         string        `yaml:"database"`
	User             string        `yaml:"user"`
	Password         string        `yaml:"password"`
	SSLMode          string        `yaml:"sslmode"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
	ApplicationName  string        `yaml:"application_name"`

	// Connection pool knobs, passed through to database/sql.
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// Default returns a Config with sensible defaults for a Supabase-hosted
// Postgres instance.
func Default() *Config {
	return &Config{
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "require",
		ConnectTimeout:  10 * time.Second,
		ApplicationName: "supaq",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Load reads a YAML config file and applies it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv resolves a Config from the process environment, loading a .env
// file first when one exists in the working directory. Variables use the
// SUPAQ_ prefix; unset variables keep their defaults.
func FromEnv() (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvPrefix + "HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvPrefix + "PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sPORT: %w", EnvPrefix, err)
		}
		c.Port = p
	}
	if v := os.Getenv(EnvPrefix + "DATABASE"); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvPrefix + "USER"); v != "" {
		c.User = v
	}
	if v := os.Getenv(EnvPrefix + "PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvPrefix + "SSLMODE"); v != "" {
		c.SSLMode = v
	}
	if v := os.Getenv(EnvPrefix + "APPLICATION_NAME"); v != "" {
		c.ApplicationName = v
	}
	for _, d := range []struct {
		key  string
		dest *time.Duration
	}{
		{"CONNECT_TIMEOUT", &c.ConnectTimeout},
		{"STATEMENT_TIMEOUT", &c.StatementTimeout},
		{"CONN_MAX_LIFETIME", &c.ConnMaxLifetime},
	} {
		if v := os.Getenv(EnvPrefix + d.key); v != "" {
			dur, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, d.key, err)
			}
			*d.dest = dur
		}
	}
	return nil
}

// Addr returns the host:port pair for log and error messages.
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// DSN renders the configuration as a lib/pq key=value connection string.
// The statement timeout, which has no DSN key of its own, is passed through
// the server options parameter.
func (c *Config) DSN() string {
	kv := []string{
		"host=" + quoteDSN(c.Host),
		"port=" + strconv.Itoa(c.Port),
	}
	if c.Database != "" {
		kv = append(kv, "dbname="+quoteDSN(c.Database))
	}
	if c.User != "" {
		kv = append(kv, "user="+quoteDSN(c.User))
	}
	if c.Password != "" {
		kv = append(kv, "password="+quoteDSN(c.Password))
	}
	if c.SSLMode != "" {
		kv = append(kv, "sslmode="+quoteDSN(c.SSLMode))
	}
	if c.ConnectTimeout > 0 {
		kv = append(kv, "connect_timeout="+strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	}
	if c.ApplicationName != "" {
		kv = append(kv, "application_name="+quoteDSN(c.ApplicationName))
	}
	if c.StatementTimeout > 0 {
		kv = append(kv, fmt.Sprintf("options='-c statement_timeout=%d'", c.StatementTimeout.Milliseconds()))
	}
	return strings.Join(kv, " ")
}

// quoteDSN single-quotes a DSN value when it contains characters lib/pq
// would otherwise misparse.
func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
