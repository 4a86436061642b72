// Package web provides the embedded page that hosts the map widget and the
// filter inputs.
package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/couchcryptid/cat-map/internal/domain"
)

//go:embed static/* templates/*
var files embed.FS

var indexTmpl = template.Must(template.New("index.html").ParseFS(files, "templates/index.html"))

// PageData is everything the index template needs to boot the page.
type PageData struct {
	Session   string
	CenterLat float64
	CenterLon float64
	Zoom      int
	TileURL   string
	View      domain.View
}

// RenderIndex writes the index page.
func RenderIndex(w io.Writer, data PageData) error {
	return indexTmpl.Execute(w, data)
}

// StaticHandler serves the embedded JS and CSS under the given prefix.
func StaticHandler(prefix string) http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return http.StripPrefix(prefix, http.FileServer(http.FS(sub)))
}
