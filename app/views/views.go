// Package views holds the server-rendered pages.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed *.html
var files embed.FS

// Page names.
const (
	SignIn = "signin"
	SignUp = "signup"
	Home   = "home"
)

// Set is the parsed page templates, each wrapped in the shared layout.
type Set struct {
	pages map[string]*template.Template
}

// Load parses every page.
func Load() (*Set, error) {
	s := &Set{pages: make(map[string]*template.Template)}
	for _, name := range []string{SignIn, SignUp, Home} {
		t, err := template.ParseFS(files, "layout.html", name+".html")
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", name, err)
		}
		s.pages[name] = t
	}
	return s, nil
}

// Render writes page with data.
func (s *Set) Render(w io.Writer, page string, data interface{}) error {
	t, ok := s.pages[page]
	if !ok {
		return fmt.Errorf("views: unknown page %q", page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
