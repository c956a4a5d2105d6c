package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"

	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
)

const (
	SanitizerRegex = "regex"
	SanitizerTree  = "tree"
)

type Config struct {
	Database  DatabaseConfig   `json:"database"`
	WordPress WordPressConfig  `json:"wordpress"`
	Paths     PathsConfig      `json:"paths"`
	Media     MediaConfig      `json:"media"`
	FileStore FileStoreConfig  `json:"file_store"`
	Import    ImportConfig     `json:"import"`
	Sync      SyncConfig       `json:"sync"`
	LogConfig logger.LogConfig `json:"log_config"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
	// MaxRetrySeconds bounds the reconnect backoff on open and read paths.
	MaxRetrySeconds int64 `json:"max_retry_seconds"`
}

type WordPressConfig struct {
	URL            string `json:"url"`
	Username       string `json:"username"`
	AppPassword    string `json:"app_password"`
	PerPage        int    `json:"per_page"`
	PageDelayMs    int64  `json:"page_delay_ms"`
	TimeoutSeconds int64  `json:"timeout_seconds"`
	MaxRetries     int    `json:"max_retries"`
	UserAgent      string `json:"user_agent"`
}

type PathsConfig struct {
	ExportDir   string `json:"export_dir"`
	MediaDir    string `json:"media_dir"`
	URLMappings string `json:"url_mappings"`
	IDMappings  string `json:"id_mappings"`
}

type MediaConfig struct {
	DelayMs        int64 `json:"delay_ms"`
	TimeoutSeconds int64 `json:"timeout_seconds"`
}

// FileStoreConfig selects the media backend; Data is decoded by the backend.
type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ImportConfig struct {
	Reimport           bool   `json:"reimport"`
	Strict             bool   `json:"strict"`
	FallbackAuthor     bool   `json:"fallback_author"`
	Sanitizer          string `json:"sanitizer"`
	DefaultAuthorEmail string `json:"default_author_email"`
	DefaultAuthorName  string `json:"default_author_name"`
	SlugCacheSize      int    `json:"slug_cache_size"`
}

type SyncConfig struct {
	Cron string `json:"cron"`
}

// Load reads the optional JSON config file, then .env files and environment
// overrides, then fills defaults. An empty path is allowed.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	loadDotEnv()
	applyEnv(cfg)
	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func applyEnv(cfg *Config) {
	if v := firstEnv("WORDPRESS_URL", "WP_URL"); v != "" {
		cfg.WordPress.URL = v
	}
	if v := firstEnv("WORDPRESS_USERNAME", "WP_USERNAME"); v != "" {
		cfg.WordPress.Username = v
	}
	if v := firstEnv("WORDPRESS_APPLICATION_PASSWORD", "WORDPRESS_APP_PASSWORD", "WP_APPLICATION_PASSWORD", "APPLICATION_PASSWORD"); v != "" {
		cfg.WordPress.AppPassword = v
	}
	if v := firstEnv("DATABASE_URL", "NETLIFY_DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := firstEnv("EXPORTS_DIR"); v != "" {
		cfg.Paths.ExportDir = v
	}
	if v := firstEnv("MEDIA_DIR"); v != "" {
		cfg.Paths.MediaDir = v
	}
	if os.Getenv("REIMPORT_POSTS") == "1" {
		cfg.Import.Reimport = true
	}
}

func applyDefaults(cfg *Config) {
	cfg.WordPress.URL = strings.TrimSuffix(cfg.WordPress.URL, "/")
	if cfg.WordPress.PerPage <= 0 {
		cfg.WordPress.PerPage = 100
	}
	if cfg.WordPress.PageDelayMs <= 0 {
		cfg.WordPress.PageDelayMs = 500
	}
	if cfg.WordPress.TimeoutSeconds <= 0 {
		cfg.WordPress.TimeoutSeconds = 30
	}
	if cfg.WordPress.MaxRetries <= 0 {
		cfg.WordPress.MaxRetries = 3
	}
	if cfg.WordPress.UserAgent == "" {
		cfg.WordPress.UserAgent = "wpmigrate"
	}
	if cfg.Paths.ExportDir == "" {
		cfg.Paths.ExportDir = "exports"
	}
	if cfg.Paths.MediaDir == "" {
		cfg.Paths.MediaDir = "media"
	}
	if cfg.Paths.URLMappings == "" {
		cfg.Paths.URLMappings = "url-mappings.json"
	}
	if cfg.Paths.IDMappings == "" {
		cfg.Paths.IDMappings = "id-mappings.json"
	}
	if cfg.Media.DelayMs <= 0 {
		cfg.Media.DelayMs = 100
	}
	if cfg.Media.TimeoutSeconds <= 0 {
		cfg.Media.TimeoutSeconds = 30
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.FileStore.Type == "local" && cfg.FileStore.Data == nil {
		cfg.FileStore.Data = map[string]interface{}{"dir": cfg.Paths.MediaDir}
	}
	if cfg.Import.Sanitizer == "" {
		cfg.Import.Sanitizer = SanitizerRegex
	}
	if cfg.Import.DefaultAuthorName == "" {
		cfg.Import.DefaultAuthorName = "Blog"
	}
	if cfg.Import.SlugCacheSize <= 0 {
		cfg.Import.SlugCacheSize = 1024
	}
	if cfg.Database.MaxRetrySeconds <= 0 {
		cfg.Database.MaxRetrySeconds = 15
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Sync.Cron == "" {
		cfg.Sync.Cron = "0 * * * *"
	}
}

func (c *Config) validate() error {
	switch c.Import.Sanitizer {
	case SanitizerRegex, SanitizerTree:
	default:
		return fmt.Errorf("import.sanitizer must be %s or %s: %w", SanitizerRegex, SanitizerTree, appErr.ErrInvalid)
	}
	switch c.FileStore.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("file_store.type must be local or s3: %w", appErr.ErrInvalid)
	}
	return nil
}

// RequireWordPress checks the remote API settings. When needPassword is set
// an application password is mandatory as well.
func (c *Config) RequireWordPress(needPassword bool) error {
	var missing []string
	if c.WordPress.URL == "" {
		missing = append(missing, "WORDPRESS_URL=https://yoursite.com")
	}
	if needPassword && c.WordPress.AppPassword == "" {
		missing = append(missing,
			"WORDPRESS_USERNAME=your_wp_username",
			"WORDPRESS_APPLICATION_PASSWORD=xxxx xxxx xxxx xxxx (or WORDPRESS_APP_PASSWORD)")
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: set in .env or config:\n  %s", appErr.ErrMissingConfig, strings.Join(missing, "\n  "))
}

func (c *Config) RequireDatabase() error {
	if c.Database.DSN != "" || c.Database.Host != "" {
		return nil
	}
	return fmt.Errorf("%w: set DATABASE_URL (or NETLIFY_DATABASE_URL) in .env, or database.dsn / database.host in config", appErr.ErrMissingConfig)
}

func (c WordPressConfig) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMs) * time.Millisecond
}

func (c WordPressConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c MediaConfig) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

func (c MediaConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c DatabaseConfig) MaxRetry() time.Duration {
	return time.Duration(c.MaxRetrySeconds) * time.Second
}

// SiteDomain is the host of the WordPress site, used to build placeholder
// email addresses.
func (c *Config) SiteDomain() string {
	u, err := url.Parse(c.WordPress.URL)
	if err != nil || u.Hostname() == "" {
		return "localhost"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func (c *Config) AuthorEmail() string {
	if c.Import.DefaultAuthorEmail != "" {
		return c.Import.DefaultAuthorEmail
	}
	return "blog@" + c.SiteDomain()
}
