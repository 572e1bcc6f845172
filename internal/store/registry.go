package store

import (
	"errors"
	"maps"
	"slices"
)

// Registry holds one connection per database path.
type Registry struct {
	conns map[string]*Conn
	open  func(path string) (*Conn, error)
}

// NewRegistry returns an empty registry that opens files with Open.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Conn), open: Open}
}

// Create returns the connection for path, opening it on first use.
func (r *Registry) Create(path string) (*Conn, error) {
	if c, ok := r.conns[path]; ok {
		return c, nil
	}
	c, err := r.open(path)
	if err != nil {
		return nil, err
	}
	r.conns[path] = c
	return c, nil
}

// Get returns an already open connection.
func (r *Registry) Get(path string) (*Conn, error) {
	c, ok := r.conns[path]
	if !ok {
		return nil, ErrNotConnected
	}
	return c, nil
}

// Destroy closes and forgets the connection for path.
func (r *Registry) Destroy(path string) error {
	c, ok := r.conns[path]
	if !ok {
		return nil
	}
	delete(r.conns, path)
	return c.Close()
}

// DestroyAll closes every connection.
func (r *Registry) DestroyAll() error {
	var errs []error
	for path := range r.conns {
		errs = append(errs, r.Destroy(path))
	}
	return errors.Join(errs...)
}

// Paths lists the open databases in sorted order.
func (r *Registry) Paths() []string {
	return slices.Sorted(maps.Keys(r.conns))
}
