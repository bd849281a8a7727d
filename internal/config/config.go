package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the tabvaultd server configuration, loaded from the
// environment.
type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	APIToken      string // Bearer token clients must present
	EncryptionKey string // hex AES-256 key sealing payloads at rest
	GroupingKey   string // Gemini API key; empty = fallback-only grouping
	GroupingModel string

	// Redis
	RedisAddr             string
	RedisUser             string
	RedisPassword         string
	RedisPasswordRequired bool
	RedisDB               int
	RedisDT               time.Duration // dial timeout
	RedisRT               time.Duration // read timeout
	RedisWT               time.Duration // write timeout
	RedisMaxWait          time.Duration // max wait between retries
	RedisPingTimeout      time.Duration
	RedisPoolSize         int
	RedisConnectTimeout   time.Duration // total time to retry connecting
	RedisRetryInterval    time.Duration // initial wait between retries, grows exponentially
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict healthz/readyz to specific IPs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

// Load reads the server configuration. Missing required variables
// panic: the server must not come up half-configured.
func Load() *Config {
	cfg := &Config{
		ListenPort:      getenv("TABVAULT_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("TABVAULT_SHUTDOWN_TIMEOUT", 5*time.Second),

		LogLevel:  getenv("TABVAULT_LOG_LEVEL", "info"),
		PrettyLog: mustBool("TABVAULT_PRETTY_LOG", false),

		APIToken:      requireEnv("TABVAULT_API_TOKEN"),
		EncryptionKey: requireEnv("TABVAULT_ENCRYPTION_KEY"),
		GroupingKey:   getenv("TABVAULT_GROUPING_API_KEY", ""),
		GroupingModel: getenv("TABVAULT_GROUPING_MODEL", ""),

		RedisAddr:             requireEnv("TABVAULT_REDIS_ADDR"),
		RedisUser:             getenv("TABVAULT_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("TABVAULT_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("TABVAULT_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("TABVAULT_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		AllowedHosts: splitAndTrim(getenv("TABVAULT_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("TABVAULT_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("TABVAULT_TRUST_PROXY", false),
	}

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("FATAL: TABVAULT_REDIS_PASSWORD is required when TABVAULT_REDIS_PASSWORD_REQUIRED=true")
	}

	return cfg
}

// ClientConfig is the tabvault CLI configuration. Values come from
// defaults, then the YAML config file, then the environment, each layer
// overriding the previous one.
type ClientConfig struct {
	UserID     string `yaml:"userId"`
	SQLitePath string `yaml:"sqlitePath"`

	APIBaseURL string `yaml:"apiBaseUrl"` // remote store endpoint, empty = local only
	APIToken   string `yaml:"apiToken"`

	ChunkSize     int           `yaml:"chunkSize"`     // transfer chunk size
	WatchDebounce time.Duration `yaml:"watchDebounce"` // store watcher debounce
	DevToolsURL   string        `yaml:"devtoolsUrl"`   // browser debugging endpoint for tab import

	LogLevel  string `yaml:"logLevel"`
	PrettyLog bool   `yaml:"prettyLog"`
}

// DefaultClientConfigPath returns ~/.config/tabvault/config.yaml (or
// the platform equivalent).
func DefaultClientConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tabvault", "config.yaml")
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tabvault.db"
	}
	return filepath.Join(home, ".local", "share", "tabvault", "tabvault.db")
}

// LoadClient reads the CLI configuration. path may be empty, in which
// case the default location is tried; a missing file is not an error.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		UserID:        "local",
		SQLitePath:    defaultDataPath(),
		ChunkSize:     50,
		WatchDebounce: 300 * time.Millisecond,
		LogLevel:      "warn",
		PrettyLog:     true,
	}

	explicit := path != ""
	if path == "" {
		path = DefaultClientConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case explicit:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment overrides the file.
	cfg.UserID = getenv("TABVAULT_USER_ID", cfg.UserID)
	cfg.SQLitePath = getenv("TABVAULT_SQLITE_PATH", cfg.SQLitePath)
	cfg.APIBaseURL = getenv("TABVAULT_API_URL", cfg.APIBaseURL)
	cfg.APIToken = getenv("TABVAULT_API_TOKEN", cfg.APIToken)
	cfg.ChunkSize = getenvInt("TABVAULT_CHUNK_SIZE", cfg.ChunkSize)
	cfg.WatchDebounce = mustDuration("TABVAULT_WATCH_DEBOUNCE", cfg.WatchDebounce)
	cfg.DevToolsURL = getenv("TABVAULT_DEVTOOLS_URL", cfg.DevToolsURL)
	cfg.LogLevel = getenv("TABVAULT_LOG_LEVEL", cfg.LogLevel)
	cfg.PrettyLog = mustBool("TABVAULT_PRETTY_LOG", cfg.PrettyLog)

	return cfg, nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
