// Package web bundles the browser workspace served at the site root.
package web

import "embed"

// Assets holds templates/index.html and the static/ directory.
//
//go:embed templates static
var Assets embed.FS
