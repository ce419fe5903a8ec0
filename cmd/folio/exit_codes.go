package main

import (
	"errors"
	"os"

	folio "github.com/alnah/go-folio"
	"github.com/alnah/go-folio/internal/assets"
	"github.com/alnah/go-folio/internal/config"
	"github.com/alnah/go-folio/internal/content"
)

// Exit codes for the folio CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run, or check found no problems
	ExitGeneral = 1 // General/unexpected error, or check found problems
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File or content directory not found, permission denied
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, content.ErrContentDirNotFound) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, folio.ErrEmptyMarkdown) ||
		errors.Is(err, folio.ErrInvalidAssetPath) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, content.ErrInvalidFrontMatter) ||
		errors.Is(err, content.ErrInvalidDate) {
		return ExitUsage
	}

	return ExitGeneral
}
