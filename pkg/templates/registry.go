package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"
)

//go:embed assets/**/*.tmpl
var embeddedFS embed.FS

// Template is a parsed prompt template.
type Template struct {
	ID     string
	Source string

	parsed *template.Template
}

// Render executes the template with the provided data.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.parsed.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", t.ID, err)
	}
	return buf.String(), nil
}

// Registry resolves templates by ID ("prompts/analysis", "agents/aggregate").
// IDs are file paths relative to the registry root without the .tmpl suffix.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistryFromFS parses every .tmpl file below the root of filesystem.
func NewRegistryFromFS(filesystem fs.FS) (*Registry, error) {
	r := &Registry{templates: map[string]*Template{}}
	if err := r.load(filesystem, "embedded"); err != nil {
		return nil, err
	}
	return r, nil
}

// NewRegistry returns the embedded templates, overlaid with any .tmpl files
// found under overrideDir. An empty overrideDir yields the embedded set.
func NewRegistry(overrideDir string) (*Registry, error) {
	r, err := newEmbeddedRegistry()
	if err != nil {
		return nil, err
	}
	if overrideDir == "" {
		return r, nil
	}

	info, err := os.Stat(overrideDir)
	if err != nil {
		return nil, fmt.Errorf("template override dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template override dir %s is not a directory", overrideDir)
	}

	if err := r.load(os.DirFS(overrideDir), overrideDir); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns the process-wide registry built from the embedded assets.
func Get() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = newEmbeddedRegistry()
	})

	if defaultErr != nil {
		panic(defaultErr)
	}

	return defaultRegistry
}

// GetTemplate retrieves a template by its ID.
func (r *Registry) GetTemplate(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", id)
	}
	return tmpl, nil
}

// Render executes a template by ID using the provided data.
func (r *Registry) Render(id string, data any) (string, error) {
	tmpl, err := r.GetTemplate(id)
	if err != nil {
		return "", err
	}
	return tmpl.Render(data)
}

// List returns all known template IDs in lexical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) load(filesystem fs.FS, source string) error {
	parsed := map[string]*Template{}

	err := fs.WalkDir(filesystem, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".tmpl" {
			return nil
		}

		content, err := fs.ReadFile(filesystem, p)
		if err != nil {
			return fmt.Errorf("read template %s: %w", p, err)
		}

		id := strings.TrimSuffix(p, ".tmpl")
		tmpl, err := template.New(id).Funcs(Funcs()).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", id, err)
		}

		parsed[id] = &Template{ID: id, Source: source, parsed: tmpl}
		return nil
	})
	if err != nil {
		return err
	}

	// Swap in only after the whole tree parsed so a bad override leaves the
	// registry untouched.
	r.mu.Lock()
	for id, tmpl := range parsed {
		r.templates[id] = tmpl
	}
	r.mu.Unlock()

	return nil
}

func newEmbeddedRegistry() (*Registry, error) {
	subFS, err := fs.Sub(embeddedFS, "assets")
	if err != nil {
		return nil, fmt.Errorf("prepare embedded templates: %w", err)
	}
	return NewRegistryFromFS(subFS)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)
