// Package web serves the embedded keyword tool page and a JSON API over HTTP.
// Binds to localhost by default; there is no auth.
package web

import "embed"

//go:embed static/index.html
var staticFS embed.FS
