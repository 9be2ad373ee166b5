package registry

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/module"
)

// Plugin is the interface that every module package implements to be
// registered.
type Plugin interface {
	Register(r *Registry)
}

// ModuleDescription is the static description of a module class.
type ModuleDescription struct {
	ClassName string
	Doc       string
	// IsView marks classes that drive a frame, such as View3D.
	IsView bool
	New    func() module.Module
}

// Registry holds the module and call classes of a single application
// instance.
type Registry struct {
	modules map[string]*ModuleDescription
	calls   map[string]*call.Description
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		modules: make(map[string]*ModuleDescription),
		calls:   make(map[string]*call.Description),
	}
}

// RegisterModule adds a module class. Registering a class name twice is a
// programming error and panics.
func (r *Registry) RegisterModule(desc *ModuleDescription) {
	if _, exists := r.modules[desc.ClassName]; exists {
		panic(fmt.Sprintf("module class '%s' already registered", desc.ClassName))
	}
	slog.Debug("Registering module class.", "class", desc.ClassName)
	r.modules[desc.ClassName] = desc
}

// RegisterCall adds a call class. Registering a class name twice is a
// programming error and panics.
func (r *Registry) RegisterCall(desc *call.Description) {
	if _, exists := r.calls[desc.ClassName]; exists {
		panic(fmt.Sprintf("call class '%s' already registered", desc.ClassName))
	}
	slog.Debug("Registering call class.", "class", desc.ClassName, "functions", desc.Functions)
	r.calls[desc.ClassName] = desc
}

// Load registers every plugin in order.
func (r *Registry) Load(plugins ...Plugin) {
	for _, p := range plugins {
		p.Register(r)
	}
}

// Module looks up a module class.
func (r *Registry) Module(className string) (*ModuleDescription, bool) {
	d, ok := r.modules[className]
	return d, ok
}

// Call looks up a call class.
func (r *Registry) Call(className string) (*call.Description, bool) {
	d, ok := r.calls[className]
	return d, ok
}

// ModuleClasses returns the registered module class names, sorted.
func (r *Registry) ModuleClasses() []string {
	return sortedKeys(r.modules)
}

// CallClasses returns the registered call class names, sorted.
func (r *Registry) CallClasses() []string {
	return sortedKeys(r.calls)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
