// Package config loads PhishGuard settings from defaults, an optional YAML
// file and the environment, in that order of precedence (lowest first).
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

const configPathEnv = "PHISHGUARD_CONFIG"

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

const (
	DefaultListenAddr    = ":8080"
	DefaultHistoryFile   = "data/history.json"
	DefaultRedisAddr     = "127.0.0.1:6379"
	DefaultLookupTimeout = 10 * time.Second
	DefaultCacheTTL      = time.Hour
	DefaultRDAPURL       = "https://rdap.org/domain/"
	DefaultPhishTankURL  = "https://checkurl.phishtank.com/checkurl/"
)

// Config holds every setting the binaries need.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Lookup  LookupConfig  `yaml:"lookup"`
	Proxy   ProxyConfig   `yaml:"proxy"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr"`
	APIKey     string `yaml:"apiKey"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig selects the history backend. RedisAddr is also used by the
// scan queue whatever the backend.
type StorageConfig struct {
	Backend     string `yaml:"backend"`
	HistoryFile string `yaml:"historyFile"`
	RedisAddr   string `yaml:"redisAddr"`
	RedisKey    string `yaml:"redisKey"`
	DatabaseURL string `yaml:"databaseUrl"`
}

type LookupConfig struct {
	Mode            string        `yaml:"mode"`
	Timeout         time.Duration `yaml:"timeout"`
	CacheTTL        time.Duration `yaml:"cacheTtl"`
	RDAPURL         string        `yaml:"rdapUrl"`
	PhishTankURL    string        `yaml:"phishTankUrl"`
	PhishTankAPIKey string        `yaml:"phishTankApiKey"`
}

type ProxyConfig struct {
	List        []string `yaml:"list"`
	Concurrency int      `yaml:"concurrency"`
}

// Load reads .env (if present), the YAML file named by PHISHGUARD_CONFIG (if
// set) and environment overrides, then validates the result.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in settings: in-memory history, simulated lookups.
func Default() *Config {
	return &Config{
		Server: ServerConfig{ListenAddr: DefaultListenAddr},
		Log:    LogConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{
			Backend:     BackendMemory,
			HistoryFile: DefaultHistoryFile,
			RedisAddr:   DefaultRedisAddr,
		},
		Lookup: LookupConfig{
			Mode:         "simulated",
			Timeout:      DefaultLookupTimeout,
			CacheTTL:     DefaultCacheTTL,
			RDAPURL:      DefaultRDAPURL,
			PhishTankURL: DefaultPhishTankURL,
		},
	}
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: cannot read %s: %w", path, err)
	}
	// Unmarshalling onto the defaults keeps every key the file leaves out.
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("config: cannot parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s %q: %w", key, v, err)
		}
		*dst = d
		return nil
	}

	setString("LISTEN_ADDR", &c.Server.ListenAddr)
	setString("API_SECRET_KEY", &c.Server.APIKey)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)
	setString("STORAGE_BACKEND", &c.Storage.Backend)
	setString("HISTORY_FILE", &c.Storage.HistoryFile)
	setString("REDIS_ADDR", &c.Storage.RedisAddr)
	setString("REDIS_KEY", &c.Storage.RedisKey)
	setString("DB_URL", &c.Storage.DatabaseURL)
	setString("LOOKUP_MODE", &c.Lookup.Mode)
	setString("PHISHTANK_API_KEY", &c.Lookup.PhishTankAPIKey)

	if err := setDuration("LOOKUP_TIMEOUT", &c.Lookup.Timeout); err != nil {
		return err
	}
	if err := setDuration("LOOKUP_CACHE_TTL", &c.Lookup.CacheTTL); err != nil {
		return err
	}

	if v := os.Getenv("PROXY_LIST"); v != "" {
		c.Proxy.List = splitList(v)
	}
	if v := os.Getenv("PROXY_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PROXY_CONCURRENCY %q: %w", v, err)
		}
		c.Proxy.Concurrency = n
	}
	return nil
}

// Validate rejects settings the binaries cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.HistoryFile == "" {
			return fmt.Errorf("config: file backend needs HISTORY_FILE")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("config: redis backend needs REDIS_ADDR")
		}
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("config: postgres backend needs DB_URL")
		}
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Lookup.Mode {
	case "simulated", "live":
	default:
		return fmt.Errorf("config: unknown lookup mode %q", c.Lookup.Mode)
	}

	if c.Lookup.Timeout <= 0 {
		return fmt.Errorf("config: lookup timeout must be positive")
	}
	if c.Proxy.Concurrency < 0 {
		return fmt.Errorf("config: proxy concurrency must not be negative")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
