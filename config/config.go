package config

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	API        APIConfig        `yaml:"api"`
	Session    SessionConfig    `yaml:"session"`
	Upload     UploadConfig     `yaml:"upload"`
	Directory  DirectoryConfig  `yaml:"directory"`
	Map        MapConfig        `yaml:"map"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the local view API configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// APIConfig describes the upstream print REST API.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	HTTPProxy      string        `yaml:"http_proxy"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
}

// SessionConfig holds sign-in and refresh settings.
type SessionConfig struct {
	DefaultDomain          string        `yaml:"default_domain"`
	AllowedDomains         []string      `yaml:"allowed_domains"`
	RefreshIntervalSeconds int           `yaml:"refresh_interval_seconds"`
	RefreshInterval        time.Duration `yaml:"-"`
}

// UploadConfig holds the local file checks run before an upload starts.
type UploadConfig struct {
	MaxBytes          int64    `yaml:"max_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// DirectoryConfig points at the static printer directory document.
type DirectoryConfig struct {
	Path         string `yaml:"path"`
	DefaultGroup string `yaml:"default_group"`
}

// MapConfig holds campus map behavior.
type MapConfig struct {
	HoverDelayMillis int           `yaml:"hover_delay_ms"`
	HoverDelay       time.Duration `yaml:"-"`
	DefaultColor     string        `yaml:"default_color"`
	HoverColor       string        `yaml:"hover_color"`
	SelectedColor    string        `yaml:"selected_color"`
}

// DatabaseConfig holds the print history database configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "sqlite" or "postgres"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 5001
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 20
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:5000"
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 30
	}
	cfg.API.Timeout = time.Duration(cfg.API.TimeoutSeconds) * time.Second

	if cfg.Session.DefaultDomain == "" {
		cfg.Session.DefaultDomain = "students.calvin.edu"
	}
	if len(cfg.Session.AllowedDomains) == 0 {
		cfg.Session.AllowedDomains = []string{"students.calvin.edu", "calvin.edu"}
	}
	if cfg.Session.RefreshIntervalSeconds <= 0 {
		cfg.Session.RefreshIntervalSeconds = 300
	}
	cfg.Session.RefreshInterval = time.Duration(cfg.Session.RefreshIntervalSeconds) * time.Second

	if cfg.Upload.MaxBytes <= 0 {
		cfg.Upload.MaxBytes = 100 * 1024 * 1024
	}
	if len(cfg.Upload.AllowedExtensions) == 0 {
		cfg.Upload.AllowedExtensions = []string{"txt", "pdf", "docx", "doc", "odt", "xps", "png", "jpg", "jpeg", "gif"}
	}

	if cfg.Directory.Path == "" {
		cfg.Directory.Path = "./static/printers.json"
	}
	if cfg.Directory.DefaultGroup == "" {
		cfg.Directory.DefaultGroup = "library"
	}

	if cfg.Map.HoverDelayMillis <= 0 {
		cfg.Map.HoverDelayMillis = 100
	}
	cfg.Map.HoverDelay = time.Duration(cfg.Map.HoverDelayMillis) * time.Millisecond
	if cfg.Map.DefaultColor == "" {
		cfg.Map.DefaultColor = "#b4b4b4"
	}
	if cfg.Map.HoverColor == "" {
		cfg.Map.HoverColor = "#4dafcf"
	}
	if cfg.Map.SelectedColor == "" {
		cfg.Map.SelectedColor = "#007095"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:webprint.db?cache=shared"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		slog.Info("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}
