// internal/personas/registry.go
package personas

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownPersona   = errors.New("unknown persona")
	ErrDuplicatePersona = errors.New("duplicate persona id")
	ErrEmptyRegistry    = errors.New("persona registry is empty")
)

// Registry holds all available personas
type Registry struct {
	personas map[string]Persona
	order    []string // Preserve order for consistent display
}

// NewRegistry builds a registry from a persona list, keeping list order
func NewRegistry(list []Persona) (*Registry, error) {
	if len(list) == 0 {
		return nil, ErrEmptyRegistry
	}

	r := &Registry{
		personas: make(map[string]Persona, len(list)),
		order:    make([]string, 0, len(list)),
	}

	for _, p := range list {
		if p.ID == "" {
			return nil, fmt.Errorf("persona %q: missing id", p.Name)
		}
		if p.ID == SenderUser || p.ID == SenderSystem {
			return nil, fmt.Errorf("persona id %q is reserved", p.ID)
		}
		if _, ok := r.personas[p.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePersona, p.ID)
		}
		r.personas[p.ID] = p.clone()
		r.order = append(r.order, p.ID)
	}

	return r, nil
}

// LoadFile reads a persona list from a YAML file
func LoadFile(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personas: %w", err)
	}

	var doc struct {
		Personas []Persona `yaml:"personas"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse personas: %w", err)
	}
	return doc.Personas, nil
}

// Get returns a persona by ID
func (r *Registry) Get(id string) (Persona, bool) {
	p, ok := r.personas[id]
	if !ok {
		return Persona{}, false
	}
	return p.clone(), true
}

// All returns all personas in registry order
func (r *Registry) All() []Persona {
	result := make([]Persona, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.personas[id].clone())
	}
	return result
}

// IDs returns persona IDs in registry order
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Count returns the number of personas
func (r *Registry) Count() int {
	return len(r.order)
}

// Others returns every persona except id, in registry order
func (r *Registry) Others(id string) []Persona {
	result := make([]Persona, 0, len(r.order))
	for _, pid := range r.order {
		if pid != id {
			result = append(result, r.personas[pid].clone())
		}
	}
	return result
}

// Resolve maps IDs to personas, failing on the first unknown ID.
// Duplicates are collapsed and the result follows registry order.
func (r *Registry) Resolve(ids []string) ([]Persona, error) {
	for _, id := range ids {
		if _, ok := r.personas[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPersona, id)
		}
	}

	ordered := r.Order(ids)
	result := make([]Persona, 0, len(ordered))
	for _, id := range ordered {
		result = append(result, r.personas[id].clone())
	}
	return result, nil
}

// Order sorts known IDs into registry order and drops unknown or repeated ones
func (r *Registry) Order(ids []string) []string {
	rank := make(map[string]int, len(r.order))
	for i, id := range r.order {
		rank[id] = i
	}

	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := rank[id]; !ok || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}

	sort.Slice(result, func(i, j int) bool { return rank[result[i]] < rank[result[j]] })
	return result
}

// IsSender reports whether id may appear as a message sender
func (r *Registry) IsSender(id string) bool {
	if id == SenderUser || id == SenderSystem {
		return true
	}
	_, ok := r.personas[id]
	return ok
}
