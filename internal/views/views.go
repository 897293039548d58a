// Package views renders the server-side HTML pages. Templates and static
// assets are embedded in the binary.
package views

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

	"mini-twitter/internal/forms"
	"mini-twitter/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const layout = "templates/base.html"

// Page names
const (
	PageSignup        = "signup"
	PageLogin         = "login"
	PageHome          = "home"
	PageCreate        = "create"
	PageDetail        = "detail"
	PageProfile       = "profile"
	PageProfileEdit   = "profile_edit"
	PageFollowingList = "following_list"
	PageFollowerList  = "follower_list"
)

// Page is the data handed to every template
type Page struct {
	Title       string
	CurrentUser *models.User
	Errors      forms.Errors
	Form        any
	Next        string

	Tweet      *models.Tweet
	Tweets     []*models.Tweet
	Profile    *models.Profile
	TargetUser *models.User
	Entries    []*models.FollowEntry
	Pager      *Pager
}

// Pager describes a window of the home feed
type Pager struct {
	Limit  int
	Offset int
	Total  int
}

// HasPrev reports whether newer tweets exist before the window
func (p *Pager) HasPrev() bool { return p.Offset > 0 }

// HasNext reports whether older tweets exist after the window
func (p *Pager) HasNext() bool { return p.Offset+p.Limit < p.Total }

// PrevOffset is the offset of the previous window
func (p *Pager) PrevOffset() int {
	if p.Offset-p.Limit < 0 {
		return 0
	}
	return p.Offset - p.Limit
}

// NextOffset is the offset of the next window
func (p *Pager) NextOffset() int { return p.Offset + p.Limit }

var funcs = template.FuncMap{
	"maxTweetLength": func() int { return forms.MaxTweetLength },
	"fieldErrors": func(errs forms.Errors, field string) []string {
		return errs.Get(field)
	},
	"formatTime": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04")
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// Renderer executes the page templates
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layout {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layout, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Render writes page with statusCode. The page is rendered into a buffer
// first so template errors never produce a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, statusCode int, page string, data *Page) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded static assets. Mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
