// Package web bundles the static widget assets served by the backend:
// the embeddable chat scripts and the integration demo page.
package web

import "embed"

//go:embed embed.js embed-production.js demo.html
var Assets embed.FS
