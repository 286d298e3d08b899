package embedded

import (
	"embed"
	"io/fs"
	"net/http"
)

// Page assets served under /static
//
//go:embed static/app.css static/app.js
var staticFiles embed.FS

// Static returns the page assets rooted at the static directory
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// the embed directive guarantees the directory exists
		panic(err)
	}
	return http.FS(sub)
}
