// Package viewer selects a display backend for finalized meshes. Backends
// are tried in a configured preference order; the first one that can be
// created wins.
package viewer

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chazu/molmesh/pkg/geometry"
	"github.com/chazu/molmesh/pkg/logging"
)

var (
	// ErrNoViewer is returned by Create when no backend in the order could
	// be created.
	ErrNoViewer = errors.New("viewer: unable to create any viewer")
	// ErrNoDevice is returned by the gpu backend when no device is supplied.
	ErrNoDevice = errors.New("viewer: no gpu device")
	// ErrNoOutput is returned by the json backend when no writer is supplied.
	ErrNoOutput = errors.New("viewer: no output writer")
)

// Viewer displays or exports finalized meshes.
type Viewer interface {
	Name() string
	Show(meshes []*geometry.Mesh) error
}

// Options carries what the backends may need. Each backend uses only its
// own fields and fails creation when they are missing.
type Options struct {
	// Device receives draws from the gpu backend.
	Device Device
	// Out receives the json backend's document.
	Out io.Writer
	// Indent pretty-prints json output.
	Indent bool
}

// Factory creates a backend.
type Factory func(opts Options) (Viewer, error)

// Registry maps backend names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding the gpu and json backends.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("gpu", newGPUViewer)
	r.Register("json", newJSONViewer)
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Names returns the registered backend names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Create tries each backend in order and returns the first that is created
// without error. Unknown names and failures are logged and skipped.
func (r *Registry) Create(order []string, opts Options) (Viewer, error) {
	log := logging.Logger()
	for _, name := range order {
		f, ok := r.factories[name]
		if !ok {
			log.Warn("viewer: unknown backend", "backend", name)
			continue
		}
		v, err := f(opts)
		if err != nil {
			log.Warn("viewer: backend failed", "backend", name, "err", err)
			continue
		}
		log.Info("viewer selected", "backend", name)
		return v, nil
	}
	return nil, fmt.Errorf("%w: tried [%s]", ErrNoViewer, strings.Join(order, ", "))
}
