// Package content loads Markdown documents from disk and serves them from
// an in-memory repository per kind.
//
// Each kind (posts, projects, creatives) lives in its own directory under a
// content root. LoadAll reads the directory non-recursively, parses front
// matter, renders bodies through a Renderer and skips files it cannot
// read. A Repository keeps the last good snapshot and swaps in a new one on
// Refresh; a Watcher triggers Refresh through a Debouncer when files change.
package content
