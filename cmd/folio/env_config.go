package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-folio/internal/config"
	"github.com/alnah/go-folio/internal/fileutil"
	"github.com/alnah/go-folio/internal/hints"
)

// envConfig holds configuration from environment variables.
// Provides deploy-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath   string   // FOLIO_CONFIG: config file name or path
	Addr         string   // FOLIO_ADDR: listen address
	ContentRoots []string // FOLIO_CONTENT_ROOTS: list of roots, os.PathListSeparator separated

	// Tier 2 - Logging and rendering
	LogLevel      string        // FOLIO_LOG_LEVEL
	LogFormat     string        // FOLIO_LOG_FORMAT: json, console, pretty
	AssetBaseURL  string        // FOLIO_ASSET_BASE_URL
	RenderTimeout time.Duration // FOLIO_RENDER_TIMEOUT

	// Tier 3 - Contact backends
	RedisAddr        string // FOLIO_REDIS_ADDR
	RedisPassword    string // FOLIO_REDIS_PASSWORD
	RateLimitBackend string // FOLIO_RATE_LIMIT_BACKEND: memory, redis
	SMTPHost         string // FOLIO_SMTP_HOST
	SMTPPort         int    // FOLIO_SMTP_PORT
	SMTPUser         string // FOLIO_SMTP_USER
	SMTPPassword     string // FOLIO_SMTP_PASSWORD
	SMTPFrom         string // FOLIO_SMTP_FROM
	SMTPTo           string // FOLIO_SMTP_TO
}

// knownEnvVars lists valid FOLIO_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"FOLIO_CONFIG":        true,
	"FOLIO_ADDR":          true,
	"FOLIO_CONTENT_ROOTS": true,
	// Tier 2 - Logging and rendering
	"FOLIO_LOG_LEVEL":      true,
	"FOLIO_LOG_FORMAT":     true,
	"FOLIO_ASSET_BASE_URL": true,
	"FOLIO_RENDER_TIMEOUT": true,
	// Tier 3 - Contact backends
	"FOLIO_REDIS_ADDR":         true,
	"FOLIO_REDIS_PASSWORD":     true,
	"FOLIO_RATE_LIMIT_BACKEND": true,
	"FOLIO_SMTP_HOST":          true,
	"FOLIO_SMTP_PORT":          true,
	"FOLIO_SMTP_USER":          true,
	"FOLIO_SMTP_PASSWORD":      true,
	"FOLIO_SMTP_FROM":          true,
	"FOLIO_SMTP_TO":            true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:       getenv("FOLIO_CONFIG"),
		Addr:             getenv("FOLIO_ADDR"),
		LogLevel:         getenv("FOLIO_LOG_LEVEL"),
		LogFormat:        getenv("FOLIO_LOG_FORMAT"),
		AssetBaseURL:     getenv("FOLIO_ASSET_BASE_URL"),
		RedisAddr:        getenv("FOLIO_REDIS_ADDR"),
		RedisPassword:    getenv("FOLIO_REDIS_PASSWORD"),
		RateLimitBackend: getenv("FOLIO_RATE_LIMIT_BACKEND"),
		SMTPHost:         getenv("FOLIO_SMTP_HOST"),
		SMTPUser:         getenv("FOLIO_SMTP_USER"),
		SMTPPassword:     getenv("FOLIO_SMTP_PASSWORD"),
		SMTPFrom:         getenv("FOLIO_SMTP_FROM"),
		SMTPTo:           getenv("FOLIO_SMTP_TO"),
	}

	for _, root := range filepath.SplitList(getenv("FOLIO_CONTENT_ROOTS")) {
		if root = strings.TrimSpace(root); root != "" {
			cfg.ContentRoots = append(cfg.ContentRoots, root)
		}
	}

	if timeout := getenv("FOLIO_RENDER_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.RenderTimeout = d
		}
	}

	if port := getenv("FOLIO_SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			cfg.SMTPPort = p
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized FOLIO_* variables.
// Helps catch typos like FOLIO_REDIS_ADR.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	var unknown []string
	for _, env := range environ {
		if strings.HasPrefix(env, "FOLIO_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				unknown = append(unknown, name)
			}
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig applies set environment variables over cfg.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later by each command).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setString(&cfg.Server.Addr, env.Addr)
	if len(env.ContentRoots) > 0 {
		cfg.Content.Roots = append([]string(nil), env.ContentRoots...)
	}

	setString(&cfg.Logging.Level, env.LogLevel)
	setString(&cfg.Logging.Format, env.LogFormat)
	setString(&cfg.Render.AssetBaseURL, env.AssetBaseURL)
	if env.RenderTimeout > 0 {
		cfg.Render.Timeout = config.Duration(env.RenderTimeout)
	}

	setString(&cfg.Redis.Addr, env.RedisAddr)
	setString(&cfg.Redis.Password, env.RedisPassword)
	setString(&cfg.RateLimit.Backend, env.RateLimitBackend)

	setString(&cfg.SMTP.Host, env.SMTPHost)
	setString(&cfg.SMTP.Username, env.SMTPUser)
	setString(&cfg.SMTP.Password, env.SMTPPassword)
	setString(&cfg.SMTP.From, env.SMTPFrom)
	setString(&cfg.SMTP.To, env.SMTPTo)
	if env.SMTPPort > 0 {
		cfg.SMTP.Port = env.SMTPPort
	}
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// resolveConfig loads the config named by the --config flag, else
// FOLIO_CONFIG, else defaults, then applies the environment. Callers apply
// their flags and call Validate.
func resolveConfig(flagConfig string, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	name := flagConfig
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(configSearchPaths(name)))
			}
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// configSearchPaths lists where a config name is looked up, for hints.
func configSearchPaths(name string) []string {
	if fileutil.IsFilePath(name) {
		return []string{name}
	}
	paths := []string{name + ".yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, config.AppDirName, name+".yaml"))
	}
	return paths
}
