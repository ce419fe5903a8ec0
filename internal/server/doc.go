// Package server exposes the content library over an echo HTTP API and
// handles contact and comment submissions.
//
// Routes per kind K in {posts, projects, creatives}:
//
//	GET  /api/K                    list (featured, q, tag, category, sort=newest)
//	GET  /api/K/featured
//	GET  /api/K/search?q=
//	GET  /api/K/tag/:tag
//	GET  /api/K/category/:category
//	GET  /api/K/:slug
//
// Global routes:
//
//	GET  /api/search?q=
//	POST /api/refresh
//	GET  /api/comments?postType=&postSlug=
//	POST /api/contact
//	GET  /assets/styles/:name
//	GET  /healthz
//	GET  /metrics
//
// Every error response is JSON with at least a message field.
package server
