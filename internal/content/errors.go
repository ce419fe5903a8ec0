package content

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for content loading and lookup.
var (
	ErrNotFound           = errors.New("document not found")
	ErrContentDirNotFound = errors.New("content directory not found")
	ErrInvalidFrontMatter = errors.New("invalid front matter")
	ErrInvalidDate        = errors.New("invalid date")
	ErrUnknownKind        = errors.New("unknown content kind")
)

// ResolveError reports every directory tried while resolving a kind.
type ResolveError struct {
	Kind      Kind
	Attempted []string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%v for %s (tried: %s)", ErrContentDirNotFound, e.Kind, strings.Join(e.Attempted, ", "))
}

func (e *ResolveError) Unwrap() error {
	return ErrContentDirNotFound
}
