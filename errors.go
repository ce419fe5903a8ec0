package folio

import (
	"errors"

	"github.com/alnah/go-folio/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown    = errors.New("markdown content cannot be empty")
	ErrHTMLConversion   = pipeline.ErrHTMLConversion
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
