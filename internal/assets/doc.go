// Package assets provides the stylesheets and email templates served and
// sent by go-folio.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in files compiled in with go:embed
//	    ├── FilesystemLoader  - overrides from a directory on disk
//	    └── AssetResolver     - custom first, embedded as fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # content.css, citation.css
//	└── templates/
//	    └── {name}.html          # contact-email.html, comment-email.html
//
// Override a single file by placing it at the same relative path under the
// configured base path; every other asset keeps coming from the binary.
//
// # Security
//
// Asset names are validated before they touch a path. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
