package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-folio/internal/content"
	"github.com/alnah/go-folio/internal/dateutil"
	"github.com/alnah/go-folio/internal/hints"
	"github.com/alnah/go-folio/internal/logging"
)

// checkReport is the outcome of folio check.
type checkReport struct {
	Kinds    []kindReport `json:"kinds"`
	Problems int          `json:"problems"`
}

// kindReport describes one content directory.
type kindReport struct {
	Kind       content.Kind  `json:"kind"`
	Dir        string        `json:"dir,omitempty"`
	Attempted  []string      `json:"attempted,omitempty"` // set when the directory was not found
	Documents  int           `json:"documents"`
	Published  int           `json:"published"`
	Malformed  []fileProblem `json:"malformed,omitempty"`
	Duplicates []string      `json:"duplicates,omitempty"`
	Untitled   []string      `json:"untitled,omitempty"`
}

type fileProblem struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

func (k kindReport) problems() int {
	return len(k.Malformed) + len(k.Duplicates) + len(k.Untitled)
}

// runCheck loads every kind and reports problems. It returns ExitGeneral
// when problems were found; a content tree with no kind at all is an error.
func runCheck(ctx context.Context, args []string, env *Environment) (int, error) {
	f, positional, err := parseCheckFlags(args)
	if err != nil {
		return ExitUsage, err
	}
	if len(positional) > 0 {
		return ExitUsage, fmt.Errorf("%w: unexpected argument %q", ErrUsage, positional[0])
	}

	cfg, err := resolveConfig(f.common.config, env)
	if err != nil {
		return ExitUsage, err
	}
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return ExitUsage, err
	}

	logger := logging.NoOp()
	if f.common.verbose {
		provider, err := newLogProvider(cfg)
		if err != nil {
			return ExitUsage, err
		}
		logger = provider.GetLogger(logging.ContentLogger)
	}

	assetLoader, err := newAssetLoader(cfg)
	if err != nil {
		return ExitUsage, err
	}
	dates, err := dateutil.NewFormatter(cfg.Content.DateFormat)
	if err != nil {
		return ExitUsage, err
	}
	loader := content.NewLoader(newRenderer(cfg, assetLoader),
		content.WithLogger(logger),
		content.WithDateFormatter(dates),
	)

	report, err := buildCheckReport(ctx, content.NewResolver(cfg.Content.Roots...), loader)
	if err != nil {
		return ExitIO, err
	}

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return ExitGeneral, err
		}
	} else {
		printCheckReport(env.Stdout, report)
	}

	if report.Problems > 0 {
		return ExitGeneral, nil
	}
	return ExitSuccess, nil
}

// buildCheckReport loads each kind found by resolver.
func buildCheckReport(ctx context.Context, resolver *content.Resolver, loader *content.Loader) (*checkReport, error) {
	report := &checkReport{}
	var missing []string
	found := 0

	for _, kind := range content.Kinds {
		kr := kindReport{Kind: kind}

		dir, err := resolver.Resolve(kind)
		if err != nil {
			var re *content.ResolveError
			if !errors.As(err, &re) {
				return nil, err
			}
			kr.Attempted = re.Attempted
			missing = append(missing, re.Attempted...)
			report.Kinds = append(report.Kinds, kr)
			continue
		}
		found++
		kr.Dir = dir

		res, err := loader.LoadAll(ctx, kind, dir)
		if err != nil {
			return nil, err
		}
		kr.Documents = len(res.Documents)
		for _, doc := range res.Documents {
			if doc.Published {
				kr.Published++
			}
			if doc.Title == "" {
				kr.Untitled = append(kr.Untitled, doc.SourcePath)
			}
		}
		for _, s := range res.Skipped {
			kr.Malformed = append(kr.Malformed, fileProblem{File: s.File, Error: s.Err.Error()})
		}
		kr.Duplicates = res.Duplicates

		report.Problems += kr.problems()
		report.Kinds = append(report.Kinds, kr)
	}

	if found == 0 {
		return nil, fmt.Errorf("%w%s", content.ErrContentDirNotFound, hints.ForContentDirNotFound(missing))
	}
	return report, nil
}

func printCheckReport(w io.Writer, r *checkReport) {
	for _, k := range r.Kinds {
		if k.Dir == "" {
			fmt.Fprintf(w, "%-10s not found (tried %s)\n", k.Kind, strings.Join(k.Attempted, ", "))
			continue
		}
		fmt.Fprintf(w, "%-10s %s: %d documents, %d published\n", k.Kind, k.Dir, k.Documents, k.Published)
		for _, m := range k.Malformed {
			fmt.Fprintf(w, "  malformed  %s: %s\n", m.File, m.Error)
		}
		for _, d := range k.Duplicates {
			fmt.Fprintf(w, "  duplicate  %s\n", d)
		}
		for _, u := range k.Untitled {
			fmt.Fprintf(w, "  untitled   %s\n", u)
		}
	}

	switch r.Problems {
	case 0:
		fmt.Fprintln(w, "ok")
	case 1:
		fmt.Fprintln(w, "1 problem")
	default:
		fmt.Fprintf(w, "%d problems\n", r.Problems)
	}
}
