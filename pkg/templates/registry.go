package templates

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	"stockresearch/pkg/errors"
)

//go:embed assets/**/*.tmpl
var assets embed.FS

const originEmbedded = "embedded"

// Registry resolves prompt templates by id ("agents/stock_finder").
// Later loads replace templates with the same id.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
	origins   map[string]string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		templates: map[string]*template.Template{},
		origins:   map[string]string{},
	}
}

// NewRegistry loads every *.tmpl file below dir.
func NewRegistry(dir string) (*Registry, error) {
	r := New()
	if err := r.Load(os.DirFS(dir), dir); err != nil {
		return nil, err
	}
	return r, nil
}

// WithOverrides loads the embedded prompts, then lets templates under dir replace them.
func WithOverrides(dir string) (*Registry, error) {
	r, err := embedded()
	if err != nil {
		return nil, err
	}
	if err := r.Load(os.DirFS(dir), dir); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns the registry of embedded prompt assets.
func Get() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = embedded()
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultRegistry
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

func embedded() (*Registry, error) {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		return nil, errors.Wrap(err, "prepare embedded templates")
	}
	r := New()
	if err := r.Load(sub, originEmbedded); err != nil {
		return nil, err
	}
	return r, nil
}

// Load parses every *.tmpl file of fsys. A parse failure leaves the registry unchanged.
func (r *Registry) Load(fsys fs.FS, origin string) error {
	parsed := map[string]*template.Template{}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".tmpl" {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return errors.Wrapf(err, "read template %s", p)
		}

		id := strings.TrimSuffix(p, ".tmpl")
		// A blank exchange or currency would ship a broken prompt.
		tmpl, err := template.New(id).Option("missingkey=error").Parse(string(content))
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidInput, "parse template %s: %v", id, err)
		}
		parsed[id] = tmpl
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "load templates from %s", origin)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, tmpl := range parsed {
		r.templates[id] = tmpl
		r.origins[id] = origin
	}
	return nil
}

// Render executes the template id with data.
func (r *Registry) Render(id string, data any) (string, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[id]
	r.mu.RUnlock()
	if !ok {
		return "", errors.Wrapf(errors.ErrNotFound, "template %s", id)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "render template %s", id)
	}
	return buf.String(), nil
}

// Origin reports where template id was loaded from, empty when unknown.
func (r *Registry) Origin(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.origins[id]
}

// List returns all known template ids in lexical order.
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
