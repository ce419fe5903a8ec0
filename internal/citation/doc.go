// Package citation turns numbered reference lists in rendered HTML into
// interactive citation markup.
//
// Extract finds a "References", "Bibliography" or "Sources" h2, collects
// the [N] entries that follow it, wraps matching [N] markers in the body
// and gives each reference paragraph a ref-N anchor. Interaction models
// the hover, pin and jump behavior of the citation card shown by the
// front end, so the contract can be exercised without a browser.
package citation
