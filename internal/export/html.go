package export

import (
	"embed"
	"io"
	"io/fs"
	"net/http"

	html "github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// NewEngine loads the embedded report templates.
func NewEngine() (*html.Engine, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, err
	}
	return engine, nil
}

// WriteHTML renders r as a standalone printable document.
func WriteHTML(w io.Writer, r Report) error {
	engine, err := NewEngine()
	if err != nil {
		return err
	}
	return engine.Render(w, "report", r)
}
