// Package pipeline implements the Markdown-to-HTML rendering stages.
//
// A document body flows through:
//   - Markdown preprocessing: ==highlight== to <mark>, $$block$$ and $inline$
//     math to placeholder elements carrying the Base64 expression
//   - Markdown to HTML conversion via Goldmark (GFM, footnotes, chroma classes)
//   - Asset path rewriting for relative media references
//   - HTML post-processing: callout blockquotes and heading IDs
//
// Every stage is total. Input that does not match a pattern passes through
// unchanged, so a malformed document degrades instead of failing the load.
package pipeline
