package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	folio "github.com/alnah/go-folio"
	"github.com/alnah/go-folio/internal/assets"
	"github.com/alnah/go-folio/internal/config"
	"github.com/alnah/go-folio/internal/content"
	"github.com/alnah/go-folio/internal/hints"
)

// Sentinel errors for the render command.
var (
	ErrNoInput      = errors.New("no input specified")
	ErrReadMarkdown = errors.New("failed to read markdown file")
)

// renderOutput is the --json shape.
type renderOutput struct {
	Title     string           `json:"title,omitempty"`
	HTML      string           `json:"html"`
	Headings  []folio.Heading  `json:"headings"`
	Citations []folio.Citation `json:"citations"`
}

func runRender(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseRenderFlags(args)
	if err != nil {
		return err
	}
	switch len(positional) {
	case 0:
		return ErrNoInput
	case 1:
	default:
		return fmt.Errorf("%w: render takes one file, got %d", ErrUsage, len(positional))
	}

	cfg, err := resolveConfig(f.common.config, env)
	if err != nil {
		return err
	}
	if err := f.apply(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	path := positional[0]
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}

	fm, body, err := content.ParseFrontMatter(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("%w: %s", folio.ErrEmptyMarkdown, path)
	}

	loader, err := newAssetLoader(cfg)
	if err != nil {
		return err
	}
	renderer := newRenderer(cfg, loader)

	if f.standalone {
		title := firstNonEmpty(f.title, fm.Title, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		page, err := renderer.Page(ctx, title, body)
		if err != nil {
			return renderError(err)
		}
		_, err = io.WriteString(env.Stdout, page)
		return err
	}

	res, err := renderer.Render(ctx, body)
	if err != nil {
		return renderError(err)
	}

	if f.json {
		out := renderOutput{
			Title:     strings.TrimSpace(fm.Title),
			HTML:      res.HTML,
			Headings:  nonNil(res.Headings),
			Citations: nonNil(res.Citations),
		}
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	_, err = io.WriteString(env.Stdout, res.HTML)
	return err
}

// renderError adds a hint to timeouts.
func renderError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("rendering: %w%s", err, hints.ForTimeout())
	}
	return fmt.Errorf("rendering: %w", err)
}

// newAssetLoader returns the configured asset directory with embedded
// fallback.
func newAssetLoader(cfg *config.Config) (assets.AssetLoader, error) {
	loader, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, err
	}
	return loader, nil
}

// newRenderer builds the document renderer from the render section.
func newRenderer(cfg *config.Config, loader assets.AssetLoader) *folio.Renderer {
	return folio.NewRenderer(
		folio.WithTimeout(cfg.Render.Timeout.Std()),
		folio.WithAssetBaseURL(cfg.Render.AssetBaseURL),
		folio.WithSanitize(cfg.Render.Sanitize),
		folio.WithCitations(cfg.Render.Citations),
		folio.WithAssetLoader(loader),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
