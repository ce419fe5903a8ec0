package assets

import (
	"fmt"
	"regexp"
)

// MaxAssetNameLength bounds asset names taken from URLs.
const MaxAssetNameLength = 64

var assetNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateAssetName checks that name is safe to use as a file name stem.
// Names reach this function straight from request paths, so anything other
// than letters, digits, hyphen and underscore is rejected.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > MaxAssetNameLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidAssetName, MaxAssetNameLength)
	}
	if !assetNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
