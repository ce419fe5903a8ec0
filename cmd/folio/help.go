package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: folio <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Serve the content API")
	fmt.Fprintln(w, "  render     Render one markdown file to HTML")
	fmt.Fprintln(w, "  check      Validate every content directory")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'folio help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only log errors")
	fmt.Fprintln(w, "  -v, --verbose             Log debug output")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: folio serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Load posts, projects and creatives and serve them over HTTP.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :8080)")
	fmt.Fprintln(w, "      --content-dir <dir>   Content root, repeatable")
	fmt.Fprintln(w, "      --no-watch            Do not reload on file changes")
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  FOLIO_ADDR, FOLIO_CONTENT_ROOTS, FOLIO_REDIS_ADDR, FOLIO_SMTP_HOST, ...")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: folio render <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a markdown file and print the HTML to stdout.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print HTML, headings and citations as JSON")
	fmt.Fprintln(w, "  -s, --standalone          Wrap the HTML in a styled page")
	fmt.Fprintln(w, "      --title <s>           Page title (default from front matter)")
	fmt.Fprintln(w, "      --citations           Extract citations (default true)")
	fmt.Fprintln(w, "      --sanitize            Sanitize the rendered HTML")
	fmt.Fprintln(w, "  -t, --timeout <d>         Render timeout (e.g., 10s)")
	printCommonUsage(w)
}

// printCheckUsage prints usage for the check command.
func printCheckUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: folio check [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Load every content kind and report malformed files, duplicate")
	fmt.Fprintln(w, "slugs and documents without titles. Exits 1 when problems are found.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --content-dir <dir>   Content root, repeatable")
	fmt.Fprintln(w, "      --json                Print the report as JSON")
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "check":
		printCheckUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: folio version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: folio help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
