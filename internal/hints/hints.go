// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-folio/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForRedisConnect returns hints for a failed redis ping.
func ForRedisConnect(addr string) string {
	var hints []string

	host := addr
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		host = addr[:i]
	}
	if IsInContainer() && (host == "" || host == "localhost" || host == "127.0.0.1") {
		hints = append(hints, "inside a container, use the redis service name instead of localhost")
	}
	if os.Getenv("FOLIO_REDIS_ADDR") == "" {
		hints = append(hints, "set FOLIO_REDIS_ADDR or redis.addr in the config file")
	}
	hints = append(hints, "set rateLimit.backend: memory to run without redis")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-folio/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-folio") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForContentDirNotFound lists where content was looked for.
func ForContentDirNotFound(attempted []string) string {
	if len(attempted) == 0 {
		return format("use --content-dir or content.roots in the config file")
	}
	return format("looked in " + strings.Join(attempted, ", ") + "; use --content-dir to point elsewhere")
}

// ForAddrInUse returns hints for a listen failure.
func ForAddrInUse(addr string) string {
	return format(addr + " is taken; use --addr or FOLIO_ADDR to pick another port")
}

// ForStyleNotFound returns hints for style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
