// Package folio renders portfolio Markdown into HTML fragments.
//
// # Quick Start
//
//	r := folio.NewRenderer()
//	res, err := r.Render(ctx, "# Hello\n\n> [!NOTE]\n> World")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.HTML)
//
// # Rendering Pipeline
//
//  1. Markdown preprocessing (==highlight==, $$block$$ and $inline$ math placeholders)
//  2. Markdown to HTML via Goldmark (GFM, footnotes, class-based highlighting)
//  3. Relative media paths rewritten against an asset base URL
//  4. HTML postprocessing (GitHub-style callouts, heading ids)
//  5. Optional sanitizing with bluemonday
//  6. Optional citation markup: [N] markers linked to a trailing reference list
//
// The result carries the HTML, the heading outline and the parsed citations.
//
// # Configuration
//
//	r := folio.NewRenderer(
//	    folio.WithTimeout(5 * time.Second),
//	    folio.WithAssetBaseURL("https://cdn.example.com/media"),
//	    folio.WithSanitize(true),
//	    folio.WithCitations(true),
//	)
//
// A *Renderer satisfies the renderer contract used by the content loader,
// so the same instance renders CLI input and every served document.
package folio
