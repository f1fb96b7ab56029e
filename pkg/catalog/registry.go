package catalog

import (
	"fmt"
	"strings"
	"sync"
)

// Registry manages known categories by name. Lookups ignore case and
// surrounding whitespace; the registered spelling is canonical.
type Registry struct {
	mu         sync.RWMutex
	categories map[string]Category
	order      []string
}

// NewRegistry creates an empty category registry.
func NewRegistry() *Registry {
	return &Registry{
		categories: make(map[string]Category),
	}
}

// NewDefault creates a registry holding the built-in categories.
func NewDefault() *Registry {
	r := NewRegistry()
	for _, c := range Defaults {
		_ = r.Register(c)
	}
	return r
}

// FromFile creates a registry from a loaded catalog file. The Other fallback is
// added when the file does not define it.
func FromFile(f *File) (*Registry, error) {
	r := NewRegistry()
	for _, c := range f.Categories {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	if _, ok := r.Get(Other); !ok {
		_ = r.Register(Category{Name: Other})
	}
	return r, nil
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a category to the registry.
func (r *Registry) Register(c Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("category name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(c.Name)
	if _, exists := r.categories[k]; exists {
		return fmt.Errorf("category %q already registered", c.Name)
	}
	r.categories[k] = c
	r.order = append(r.order, k)
	return nil
}

// Get returns a category by name.
func (r *Registry) Get(name string) (Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[key(name)]
	return c, ok
}

// Canonicalize maps a label onto the canonical spelling of a known category,
// or Other when the label is unknown or empty.
func (r *Registry) Canonicalize(label string) string {
	if c, ok := r.Get(label); ok {
		return c.Name
	}
	return Other
}

// Lookup returns the category for a label, falling back to Other.
func (r *Registry) Lookup(label string) Category {
	if c, ok := r.Get(label); ok {
		return c
	}
	if c, ok := r.Get(Other); ok {
		return c
	}
	return Category{Name: Other}
}

// Names returns all registered category names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, k := range r.order {
		names = append(names, r.categories[k].Name)
	}
	return names
}

// All returns all registered categories in registration order.
func (r *Registry) All() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Category, 0, len(r.order))
	for _, k := range r.order {
		all = append(all, r.categories[k])
	}
	return all
}
