// Package module provides the building blocks every graph node is made of:
// the embedded Base with its slot and parameter tables, caller slots that
// hold at most one call, and callee slots that serve callbacks by call
// class and function name.
package module

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/callgrid/internal/ctxlog"
	"github.com/specialistvlad/callgrid/internal/param"
)

// Module is implemented by every graph node, usually by embedding Base and
// overriding Create and Release.
type Module interface {
	ModuleBase() *Base
	// Create acquires the module's resources. A failed Create leaves the
	// module unusable and the graph releases what it already created.
	Create(ctx context.Context) error
	// Release frees everything Create acquired. It is called exactly once
	// for every module whose Create succeeded.
	Release(ctx context.Context)
}

// NamedParam is a parameter together with its slot name.
type NamedParam struct {
	Name  string
	Param param.Param
}

// Base holds the slot and parameter tables of a module instance.
type Base struct {
	name    string
	class   string
	logger  *slog.Logger
	callers []*CallerSlot
	callees []*CalleeSlot
	params  []NamedParam
}

func (b *Base) ModuleBase() *Base { return b }

// Create is the default no-op resource acquisition.
func (b *Base) Create(context.Context) error { return nil }

// Release is the default no-op teardown.
func (b *Base) Release(context.Context) {}

// Attach names the instance and injects its logger. The graph calls it
// right after construction.
func (b *Base) Attach(name, class string, logger *slog.Logger) {
	b.name = name
	b.class = class
	b.logger = logger
}

func (b *Base) Name() string { return b.name }

func (b *Base) ClassName() string { return b.class }

// Logger returns the injected logger, or a discarding one for modules that
// were never attached to a graph.
func (b *Base) Logger() *slog.Logger {
	if b.logger == nil {
		return ctxlog.Discard()
	}
	return b.logger
}

// FullName joins the instance name with a slot or parameter name.
func (b *Base) FullName(slot string) string {
	if b.name == "" {
		return slot
	}
	return b.name + "::" + slot
}

// MakeCallerSlot adds an outbound slot accepting the given call classes.
func (b *Base) MakeCallerSlot(name, doc string, compatible ...string) *CallerSlot {
	b.mustBeFree(name)
	s := &CallerSlot{name: name, doc: doc, owner: b, compatible: compatible}
	b.callers = append(b.callers, s)
	return s
}

// MakeCalleeSlot adds an inbound slot. Callbacks are registered on it with
// SetCallback.
func (b *Base) MakeCalleeSlot(name, doc string) *CalleeSlot {
	b.mustBeFree(name)
	s := &CalleeSlot{name: name, doc: doc, owner: b}
	b.callees = append(b.callees, s)
	return s
}

// AddParam registers p under name and returns it, so constructors can keep
// the typed pointer:
//
//	m.size = module.AddParam(&m.Base, "size", param.NewFloat(1))
func AddParam[P param.Param](b *Base, name string, p P) P {
	b.mustBeFree(name)
	b.params = append(b.params, NamedParam{Name: name, Param: p})
	return p
}

func (b *Base) mustBeFree(name string) {
	if name == "" {
		panic("module: slot name must not be empty")
	}
	_, caller := b.CallerSlot(name)
	_, callee := b.CalleeSlot(name)
	_, prm := b.Param(name)
	if caller || callee || prm {
		panic(fmt.Sprintf("module: slot %q registered twice", name))
	}
}

// CallerSlot looks up an outbound slot by name.
func (b *Base) CallerSlot(name string) (*CallerSlot, bool) {
	for _, s := range b.callers {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

// CalleeSlot looks up an inbound slot by name.
func (b *Base) CalleeSlot(name string) (*CalleeSlot, bool) {
	for _, s := range b.callees {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

// Param looks up a parameter by name.
func (b *Base) Param(name string) (param.Param, bool) {
	for _, p := range b.params {
		if p.Name == name {
			return p.Param, true
		}
	}
	return nil, false
}

func (b *Base) CallerSlots() []*CallerSlot { return b.callers }

func (b *Base) CalleeSlots() []*CalleeSlot { return b.callees }

// Params returns the parameters in registration order.
func (b *Base) Params() []NamedParam { return b.params }
