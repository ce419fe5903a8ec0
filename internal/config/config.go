// Package config loads and validates the go-folio YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-folio/internal/dateutil"
	"github.com/alnah/go-folio/internal/fileutil"
	"github.com/alnah/go-folio/internal/logging"
	"github.com/alnah/go-folio/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDirName is the directory under the user config dir searched for
// named configs.
const AppDirName = "go-folio"

// Field length limits.
const (
	MaxAddrLength     = 256  // host:port
	MaxURLLength      = 2048 // Browser limit
	MaxEmailLength    = 254  // RFC 5321
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxPrefixLength   = 64   // redis key prefix
	MaxPasswordLength = 512
	MaxOrigins        = 32
	MaxRoots          = 16
)

// Rate limit backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all configuration for the server and CLI.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Content   ContentConfig   `yaml:"content"`
	Render    RenderConfig    `yaml:"render"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Redis     RedisConfig     `yaml:"redis"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Logging   LoggingConfig   `yaml:"logging"`
	Assets    AssetsConfig    `yaml:"assets"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	AllowOrigins    []string `yaml:"allowOrigins"` // CORS; empty = same origin only
	ShutdownTimeout Duration `yaml:"shutdownTimeout"`
}

// ContentConfig defines where documents live and how they reload.
type ContentConfig struct {
	Roots      []string `yaml:"roots"` // empty = built-in candidate list
	Watch      bool     `yaml:"watch"`
	Debounce   Duration `yaml:"debounce"`
	DateFormat string   `yaml:"dateFormat"` // display tokens, e.g. "MMMM D, YYYY"
}

// RenderConfig defines Markdown rendering options.
type RenderConfig struct {
	AssetBaseURL string   `yaml:"assetBaseURL"` // prefix for relative media; empty = unchanged
	Sanitize     bool     `yaml:"sanitize"`
	Citations    bool     `yaml:"citations"`
	Timeout      Duration `yaml:"timeout"`
}

// RateLimitConfig defines the contact endpoint limiter.
type RateLimitConfig struct {
	Window  Duration `yaml:"window"`
	Max     int      `yaml:"max"`
	Backend string   `yaml:"backend"` // "memory" or "redis"
}

// RedisConfig defines the redis connection for rate limits and comments.
type RedisConfig struct {
	Addr     string `yaml:"addr"` // empty = comments kept in memory
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// SMTPConfig defines contact notifications. Empty host disables email.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// Enabled reports whether notifications should be sent.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// LoggingConfig defines the go-logger root.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"` // json, console, pretty
	AddSource bool   `yaml:"addSource"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Content: ContentConfig{
			Watch:      true,
			Debounce:   Duration(300 * time.Millisecond),
			DateFormat: dateutil.DefaultDisplayFormat,
		},
		Render: RenderConfig{
			Citations: true,
			Timeout:   Duration(10 * time.Second),
		},
		RateLimit: RateLimitConfig{
			Window:  Duration(15 * time.Minute),
			Max:     5,
			Backend: BackendMemory,
		},
		Redis: RedisConfig{Prefix: "folio:"},
		SMTP:  SMTPConfig{Port: 587},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks lengths, ranges and enumerations. Called by LoadConfig;
// callers building a Config by hand should call it too.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateContent(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateRateLimit(); err != nil {
		return err
	}
	if err := c.validateSMTP(); err != nil {
		return err
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: logging.level %q", ErrInvalidValue, c.Logging.Level)
	}
	if c.Logging.Format != "" && !slices.Contains(logging.ValidFormats, strings.ToLower(c.Logging.Format)) {
		return fmt.Errorf("%w: logging.format %q (must be one of %s)", ErrInvalidValue, c.Logging.Format, strings.Join(logging.ValidFormats, ", "))
	}
	return validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength)
}

func (c *Config) validateServer() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidValue)
	}
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if len(c.Server.AllowOrigins) > MaxOrigins {
		return fmt.Errorf("%w: server.allowOrigins has more than %d entries", ErrInvalidValue, MaxOrigins)
	}
	for i, origin := range c.Server.AllowOrigins {
		if err := validateFieldLength(fmt.Sprintf("server.allowOrigins[%d]", i), origin, MaxURLLength); err != nil {
			return err
		}
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: server.shutdownTimeout must not be negative", ErrInvalidValue)
	}
	return nil
}

func (c *Config) validateContent() error {
	if len(c.Content.Roots) > MaxRoots {
		return fmt.Errorf("%w: content.roots has more than %d entries", ErrInvalidValue, MaxRoots)
	}
	for i, root := range c.Content.Roots {
		if err := validateFieldLength(fmt.Sprintf("content.roots[%d]", i), root, MaxPathLength); err != nil {
			return err
		}
	}
	if d := c.Content.Debounce.Std(); d < 0 || d > time.Minute {
		return fmt.Errorf("%w: content.debounce %v (must be between 0 and 1m)", ErrInvalidValue, d)
	}
	if c.Content.DateFormat != "" {
		if _, err := dateutil.ParseDateFormat(c.Content.DateFormat); err != nil {
			return fmt.Errorf("%w: content.dateFormat: %v", ErrInvalidValue, err)
		}
	}
	return nil
}

func (c *Config) validateRender() error {
	if err := validateFieldLength("render.assetBaseURL", c.Render.AssetBaseURL, MaxURLLength); err != nil {
		return err
	}
	if c.Render.Timeout < 0 {
		return fmt.Errorf("%w: render.timeout must not be negative", ErrInvalidValue)
	}
	return nil
}

func (c *Config) validateRateLimit() error {
	if c.RateLimit.Max < 1 {
		return fmt.Errorf("%w: rateLimit.max must be at least 1", ErrInvalidValue)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("%w: rateLimit.window must be positive", ErrInvalidValue)
	}
	switch strings.ToLower(c.RateLimit.Backend) {
	case "", BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: rateLimit.backend redis requires redis.addr", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: rateLimit.backend %q (must be memory or redis)", ErrInvalidValue, c.RateLimit.Backend)
	}
	if err := validateFieldLength("redis.addr", c.Redis.Addr, MaxAddrLength); err != nil {
		return err
	}
	if err := validateFieldLength("redis.password", c.Redis.Password, MaxPasswordLength); err != nil {
		return err
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("%w: redis.db must not be negative", ErrInvalidValue)
	}
	return validateFieldLength("redis.prefix", c.Redis.Prefix, MaxPrefixLength)
}

func (c *Config) validateSMTP() error {
	s := c.SMTP
	if err := validateFieldLength("smtp.host", s.Host, MaxAddrLength); err != nil {
		return err
	}
	if err := validateFieldLength("smtp.username", s.Username, MaxEmailLength); err != nil {
		return err
	}
	if err := validateFieldLength("smtp.password", s.Password, MaxPasswordLength); err != nil {
		return err
	}
	if err := validateFieldLength("smtp.from", s.From, MaxEmailLength); err != nil {
		return err
	}
	if err := validateFieldLength("smtp.to", s.To, MaxEmailLength); err != nil {
		return err
	}
	if !s.Enabled() {
		return nil
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("%w: smtp.port %d", ErrInvalidValue, s.Port)
	}
	if s.From == "" || s.To == "" {
		return fmt.Errorf("%w: smtp.from and smtp.to are required when smtp.host is set", ErrInvalidValue)
	}
	return nil
}

// validateFieldLength returns an error if value exceeds maxLength.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s is %d characters (max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name, on top
// of DefaultConfig. A value containing a path separator is a file path;
// otherwise it is a name searched in standard locations. A missing file is
// an error; there is no silent fallback.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <UserConfigDir>/go-folio/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
