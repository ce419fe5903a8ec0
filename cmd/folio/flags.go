package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-folio/internal/config"
)

// ErrUsage indicates invalid command-line usage.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// contentFlags holds content location flags.
type contentFlags struct {
	dirs []string
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common  commonFlags
	content contentFlags
	addr    string
	noWatch bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common     commonFlags
	json       bool
	standalone bool
	citations  bool
	sanitize   bool
	title      string
	timeout    string

	// set records which optional booleans were given explicitly.
	set map[string]bool
}

// checkFlags holds all flags for the check command.
type checkFlags struct {
	common  commonFlags
	content contentFlags
	json    bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only log errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log debug output")
}

// addContentFlags adds content location flags to a FlagSet.
func addContentFlags(fs *flag.FlagSet, f *contentFlags) {
	fs.StringSliceVar(&f.dirs, "content-dir", nil, "content root, repeatable (overrides content.roots)")
}

// newFlagSet returns a FlagSet that reports errors to the caller instead of
// printing them; help is printed by runMain.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

// parseError marks flag errors as usage errors, keeping ErrHelp intact.
func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

func parseServeFlags(args []string) (*serveFlags, []string, error) {
	fs := newFlagSet("serve")
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default from config, :8080)")
	fs.BoolVar(&f.noWatch, "no-watch", false, "disable content reload on file changes")
	addCommonFlags(fs, &f.common)
	addContentFlags(fs, &f.content)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

func parseRenderFlags(args []string) (*renderFlags, []string, error) {
	fs := newFlagSet("render")
	f := &renderFlags{}

	fs.BoolVar(&f.json, "json", false, "print HTML, headings and citations as JSON")
	fs.BoolVarP(&f.standalone, "standalone", "s", false, "wrap the HTML in a styled page")
	fs.BoolVar(&f.citations, "citations", true, "extract citations")
	fs.BoolVar(&f.sanitize, "sanitize", false, "sanitize the rendered HTML")
	fs.StringVar(&f.title, "title", "", "page title for --standalone (default from front matter)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "render timeout (e.g., 10s, 1m)")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}

	f.set = map[string]bool{
		"citations": fs.Changed("citations"),
		"sanitize":  fs.Changed("sanitize"),
	}
	return f, fs.Args(), nil
}

func parseCheckFlags(args []string) (*checkFlags, []string, error) {
	fs := newFlagSet("check")
	f := &checkFlags{}

	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	addCommonFlags(fs, &f.common)
	addContentFlags(fs, &f.content)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

// apply maps --quiet and --verbose onto the log level.
func (f commonFlags) apply(cfg *config.Config) {
	switch {
	case f.verbose:
		cfg.Logging.Level = "debug"
	case f.quiet:
		cfg.Logging.Level = "error"
	}
}

func (f contentFlags) apply(cfg *config.Config) {
	if len(f.dirs) > 0 {
		cfg.Content.Roots = append([]string(nil), f.dirs...)
	}
}

func (f *serveFlags) apply(cfg *config.Config) {
	f.common.apply(cfg)
	f.content.apply(cfg)
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.noWatch {
		cfg.Content.Watch = false
	}
}

func (f *renderFlags) apply(cfg *config.Config) error {
	f.common.apply(cfg)
	if f.set["citations"] {
		cfg.Render.Citations = f.citations
	}
	if f.set["sanitize"] {
		cfg.Render.Sanitize = f.sanitize
	}
	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: invalid --timeout %q", ErrUsage, f.timeout)
		}
		cfg.Render.Timeout = config.Duration(d)
	}
	return nil
}

func (f *checkFlags) apply(cfg *config.Config) {
	f.common.apply(cfg)
	f.content.apply(cfg)
}
