// Package view renders the HTML pages served next to the API.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

var tplCache = struct {
	sync.RWMutex
	m map[string]*template.Template
}{m: map[string]*template.Template{}}

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		// img lets a data URI produced by the renderer through the sanitizer
		"img": func(uri string) template.URL {
			if !strings.HasPrefix(uri, "data:image/") {
				return ""
			}
			return template.URL(uri)
		},
	}
}

func lookup(name string) (*template.Template, error) {
	tplCache.RLock()
	t, ok := tplCache.m[name]
	tplCache.RUnlock()
	if ok {
		return t, nil
	}
	t, err := template.New(name).Funcs(Funcs()).ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	tplCache.Lock()
	tplCache.m[name] = t
	tplCache.Unlock()
	return t, nil
}

// Render executes the named embedded template, e.g. "preview.html".
func Render(w io.Writer, name string, data any) error {
	t, err := lookup(name)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}
