// ABOUTME: Embeds web/static/ stylesheets for serving under /static/ by the dashboard server.
// ABOUTME: Only top-level .css files are embedded; the dashboard ships no scripts.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static/*.css
var staticFiles embed.FS

func staticFS() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
