// Package web provides the server-rendered Yatube pages.
// Every page template extends layout.html; shared fragments live in partials.html.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	layoutFile   = "templates/layout.html"
	partialsFile = "templates/partials.html"
)

// Templates holds one parsed template set per page.
type Templates struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

var templateFuncs = template.FuncMap{
	"media": func(stored string) string {
		if stored == "" {
			return ""
		}
		return "/media/" + stored
	},
	"date": func(t time.Time) string {
		return t.Format("2 January 2006")
	},
	"paragraphs": func(text string) []string {
		return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	},
}

// NewTemplates parses the layout and partials once, then clones them for each page.
func NewTemplates() (*Templates, error) {
	base, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templatesFS, layoutFile, partialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	pageFiles, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	t := &Templates{
		pages:     make(map[string]*template.Template),
		fragments: base,
	}
	for _, file := range pageFiles {
		if file == layoutFile || file == partialsFile {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout: %w", err)
		}
		page, err := clone.ParseFS(templatesFS, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %q: %w", file, err)
		}
		t.pages[path.Base(file)] = page
	}
	return t, nil
}

// Render renders a page template with the provided data to the response writer.
// The page is fully rendered before anything is written, so a failure leaves w untouched.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, data interface{}) error {
	page, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("failed to execute template %q: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderFragment renders a named partial to bytes, for caching
func (t *Templates) RenderFragment(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to execute fragment %q: %w", name, err)
	}
	return buf.Bytes(), nil
}
