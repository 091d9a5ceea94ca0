// Package web embeds the page templates and static assets served by the
// portals.
package web

import "embed"

// FS holds templates/ and static/.
//
//go:embed templates static
var FS embed.FS
