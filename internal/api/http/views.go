package apihttp

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageNames = []string{"home", "search", "details", "downloads", "error", "notfound"}

type views struct {
	pages map[string]*template.Template
}

func mustParseViews() *views {
	funcs := template.FuncMap{
		"mediaURL": func(channel, id string) string {
			return mediaPath(channel, id)
		},
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.UTC().Format("2006-01-02 15:04 UTC")
		},
	}
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		v.pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		))
	}
	return v
}

// render executes the page into a buffer first so a template failure never
// leaves a half-written response.
func (v *views) render(w http.ResponseWriter, status int, name string, data any) error {
	page, ok := v.pages[name]
	if !ok {
		return fs.ErrNotExist
	}
	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func staticHandler() http.Handler {
	return http.FileServerFS(staticFS)
}
