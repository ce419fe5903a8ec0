package main

// Notes:
// - Environment lookups go through an injected getenv, so these tests run in
//   parallel without t.Setenv.

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-folio/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Parsing FOLIO_* variables
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	vars := map[string]string{
		"FOLIO_CONFIG":         "prod",
		"FOLIO_ADDR":           ":9000",
		"FOLIO_CONTENT_ROOTS":  "/srv/a" + string(os.PathListSeparator) + " /srv/b ",
		"FOLIO_RENDER_TIMEOUT": "3s",
		"FOLIO_SMTP_PORT":      "2525",
		"FOLIO_REDIS_ADDR":     "redis:6379",
	}
	env := loadEnvConfig(func(k string) string { return vars[k] })

	if env.ConfigPath != "prod" || env.Addr != ":9000" || env.RedisAddr != "redis:6379" {
		t.Errorf("strings = %+v", env)
	}
	if !equalStrings(env.ContentRoots, []string{"/srv/a", "/srv/b"}) {
		t.Errorf("ContentRoots = %v", env.ContentRoots)
	}
	if env.RenderTimeout != 3*time.Second || env.SMTPPort != 2525 {
		t.Errorf("RenderTimeout = %v, SMTPPort = %d", env.RenderTimeout, env.SMTPPort)
	}
}

func TestLoadEnvConfig_IgnoresMalformedNumbers(t *testing.T) {
	t.Parallel()

	vars := map[string]string{
		"FOLIO_RENDER_TIMEOUT": "soon",
		"FOLIO_SMTP_PORT":      "-1",
	}
	env := loadEnvConfig(func(k string) string { return vars[k] })
	if env.RenderTimeout != 0 || env.SMTPPort != 0 {
		t.Errorf("got timeout %v port %d, want zero values", env.RenderTimeout, env.SMTPPort)
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env overrides file values
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Server.Addr = ":7000"
	cfg.SMTP.Host = "file.example.com"

	applyEnvConfig(&envConfig{
		Addr:             ":9000",
		ContentRoots:     []string{"/srv"},
		LogLevel:         "debug",
		RenderTimeout:    2 * time.Second,
		RedisAddr:        "redis:6379",
		RateLimitBackend: config.BackendRedis,
		SMTPPort:         2525,
	}, cfg)

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q, env should win over file", cfg.Server.Addr)
	}
	if cfg.SMTP.Host != "file.example.com" {
		t.Errorf("SMTP.Host = %q, unset env must keep file value", cfg.SMTP.Host)
	}
	if !equalStrings(cfg.Content.Roots, []string{"/srv"}) || cfg.Logging.Level != "debug" {
		t.Errorf("roots %v level %q", cfg.Content.Roots, cfg.Logging.Level)
	}
	if cfg.Render.Timeout.Std() != 2*time.Second || cfg.SMTP.Port != 2525 {
		t.Errorf("timeout %v port %d", cfg.Render.Timeout, cfg.SMTP.Port)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.RateLimit.Backend != config.BackendRedis {
		t.Errorf("redis %q backend %q", cfg.Redis.Addr, cfg.RateLimit.Backend)
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf, []string{
		"FOLIO_ADDR=:80",
		"FOLIO_REDIS_ADR=x",
		"FOLIO_ZZZ=1",
		"HOME=/root",
	})

	want := "warning: unknown environment variable FOLIO_REDIS_ADR (typo?)\n" +
		"warning: unknown environment variable FOLIO_ZZZ (typo?)\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

// ---------------------------------------------------------------------------
// TestResolveConfig - Flag > env > file > defaults
// ---------------------------------------------------------------------------

func TestResolveConfig(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{
		"site.yaml":  "server:\n  addr: \":7000\"\nlogging:\n  level: warn\n",
		"other.yaml": "server:\n  addr: \":7100\"\n",
	})
	site := filepath.Join(dir, "site.yaml")
	other := filepath.Join(dir, "other.yaml")

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		env, _, _ := testEnv(nil)
		cfg, err := resolveConfig("", env)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.Addr != ":8080" {
			t.Errorf("Addr = %q", cfg.Server.Addr)
		}
	})

	t.Run("env names file", func(t *testing.T) {
		t.Parallel()
		env, _, _ := testEnv(map[string]string{"FOLIO_CONFIG": site})
		cfg, err := resolveConfig("", env)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.Addr != ":7000" || cfg.Logging.Level != "warn" {
			t.Errorf("Addr %q Level %q", cfg.Server.Addr, cfg.Logging.Level)
		}
	})

	t.Run("flag beats env file", func(t *testing.T) {
		t.Parallel()
		env, _, _ := testEnv(map[string]string{"FOLIO_CONFIG": site})
		cfg, err := resolveConfig(other, env)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.Addr != ":7100" {
			t.Errorf("Addr = %q, want :7100", cfg.Server.Addr)
		}
	})

	t.Run("env beats file", func(t *testing.T) {
		t.Parallel()
		env, _, _ := testEnv(map[string]string{"FOLIO_ADDR": ":9999"})
		cfg, err := resolveConfig(site, env)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.Addr != ":9999" {
			t.Errorf("Addr = %q, want :9999", cfg.Server.Addr)
		}
	})

	t.Run("missing file has hint", func(t *testing.T) {
		t.Parallel()
		env, _, _ := testEnv(nil)
		_, err := resolveConfig(filepath.Join(dir, "nope.yaml"), env)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "hint:") {
			t.Errorf("error %q has no hint", err)
		}
	})

	t.Run("unknown vars warned", func(t *testing.T) {
		t.Parallel()
		env, _, stderr := testEnv(map[string]string{"FOLIO_ADRR": ":1"})
		if _, err := resolveConfig("", env); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stderr.String(), "FOLIO_ADRR") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
