package graph

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/ctxlog"
	"github.com/specialistvlad/callgrid/internal/dag"
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/registry"
	"github.com/specialistvlad/callgrid/internal/slotid"
)

// Instance is a module living in the graph.
type Instance struct {
	Name    string
	Class   string
	IsView  bool
	Module  module.Module
	created bool
}

// Created reports whether Create succeeded and Release has not run yet.
func (i *Instance) Created() bool { return i.created }

// Connection describes one live call.
type Connection struct {
	Class string
	From  string
	To    string
}

type connection struct {
	Connection
	producer string
	consumer string
	caller   *module.CallerSlot
	handle   call.Handle
}

// Graph owns the module instances and the calls between them.
type Graph struct {
	reg       *registry.Registry
	logger    *slog.Logger
	arena     *call.Arena
	topo      *dag.Graph
	instances map[string]*Instance
	order     []string
	conns     []*connection
}

// New creates an empty graph whose modules are instantiated from reg. The
// logger is taken from ctx.
func New(ctx context.Context, reg *registry.Registry) *Graph {
	return &Graph{
		reg:       reg,
		logger:    ctxlog.FromContext(ctx),
		arena:     call.NewArena(),
		topo:      dag.New(),
		instances: make(map[string]*Instance),
	}
}

// AddModule instantiates a module of class under name. name is a full
// module name such as "::inst::gpu"; the leading "::" is optional.
func (g *Graph) AddModule(ctx context.Context, class, name string) (module.Module, error) {
	desc, ok := g.reg.Module(class)
	if !ok {
		return nil, fmt.Errorf("%w: module class '%s'", ErrClassNotFound, class)
	}
	canonical, err := slotid.Canonical(name)
	if err != nil {
		return nil, fmt.Errorf("invalid module name: %w", err)
	}
	if _, exists := g.instances[canonical]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateModule, canonical)
	}

	m := desc.New()
	m.ModuleBase().Attach(canonical, class, g.logger.With("module", canonical, "class", class))

	g.instances[canonical] = &Instance{Name: canonical, Class: class, IsView: desc.IsView, Module: m}
	g.order = append(g.order, canonical)
	g.topo.AddNode(canonical)

	ctxlog.FromContext(ctx).Debug("Module instantiated.", "module", canonical, "class", class)
	return m, nil
}

// RemoveModule disconnects every call touching the module, releases it if
// it was created and drops it from the graph.
func (g *Graph) RemoveModule(ctx context.Context, name string) error {
	inst, err := g.instance(name)
	if err != nil {
		return err
	}
	consumers, _ := g.topo.Dependents(inst.Name)
	for _, c := range slices.Clone(g.conns) {
		if c.producer == inst.Name || c.consumer == inst.Name {
			g.drop(c)
		}
	}
	if inst.created {
		inst.Module.Release(ctx)
		inst.created = false
	}
	g.topo.RemoveNode(inst.Name)
	delete(g.instances, inst.Name)
	g.order = slices.DeleteFunc(g.order, func(n string) bool { return n == inst.Name })
	ctxlog.FromContext(ctx).Debug("Module removed.", "module", inst.Name, "disconnected_consumers", consumers)
	return nil
}

// Producers returns the sorted names of the modules name calls into.
func (g *Graph) Producers(name string) ([]string, error) {
	inst, err := g.instance(name)
	if err != nil {
		return nil, err
	}
	return g.topo.Dependencies(inst.Name)
}

// Consumers returns the sorted names of the modules calling into name.
func (g *Graph) Consumers(name string) ([]string, error) {
	inst, err := g.instance(name)
	if err != nil {
		return nil, err
	}
	return g.topo.Dependents(inst.Name)
}

// Module looks up a module instance by name.
func (g *Graph) Module(name string) (module.Module, bool) {
	inst, err := g.instance(name)
	if err != nil {
		return nil, false
	}
	return inst.Module, true
}

// Instances returns every instance in insertion order.
func (g *Graph) Instances() []*Instance {
	out := make([]*Instance, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.instances[name])
	}
	return out
}

// Views returns the view instances in insertion order.
func (g *Graph) Views() []*Instance {
	var out []*Instance
	for _, inst := range g.Instances() {
		if inst.IsView {
			out = append(out, inst)
		}
	}
	return out
}

// Connections lists the live calls in connection order.
func (g *Graph) Connections() []Connection {
	out := make([]Connection, 0, len(g.conns))
	for _, c := range g.conns {
		out = append(out, c.Connection)
	}
	return out
}

// Connect creates a call of class from the caller slot `from` to the
// callee slot `to`. Nothing is mutated when the connection is rejected.
func (g *Graph) Connect(ctx context.Context, class, from, to string) error {
	desc, ok := g.reg.Call(class)
	if !ok {
		return fmt.Errorf("%w: call class '%s'", ErrClassNotFound, class)
	}

	consumer, caller, err := g.callerSlot(from)
	if err != nil {
		return err
	}
	producer, callee, err := g.calleeSlot(to)
	if err != nil {
		return err
	}

	if !caller.IsCompatible(class) {
		return fmt.Errorf("%w: caller slot %s does not accept %s (accepts %v)", ErrIncompatibleCall, caller.FullName(), class, caller.Compatible())
	}
	if caller.IsConnected() {
		return fmt.Errorf("%w: %s", ErrAlreadyConnected, caller.FullName())
	}
	table, err := callee.DispatchTable(desc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIncompatibleCall, err)
	}
	if g.topo.WouldCycle(producer.Name, consumer.Name) {
		return fmt.Errorf("%w: %s -> %s", ErrCycle, caller.FullName(), callee.FullName())
	}

	c := desc.New()
	if err := call.Bind(c, desc, table, caller.FullName(), callee.FullName()); err != nil {
		return err
	}
	h := g.arena.Insert(c)
	if err := caller.Connect(g.arena, h); err != nil {
		g.arena.Remove(h)
		return fmt.Errorf("%w: %w", ErrAlreadyConnected, err)
	}
	if err := g.topo.AddEdge(producer.Name, consumer.Name); err != nil {
		caller.Disconnect()
		g.arena.Remove(h)
		return err
	}

	g.conns = append(g.conns, &connection{
		Connection: Connection{Class: class, From: caller.FullName(), To: callee.FullName()},
		producer:   producer.Name,
		consumer:   consumer.Name,
		caller:     caller,
		handle:     h,
	})
	ctxlog.FromContext(ctx).Debug("Call connected.", "call", class, "from", caller.FullName(), "to", callee.FullName())
	return nil
}

// Disconnect removes the call held by the caller slot `from`. Every
// reference to the call fails from then on.
func (g *Graph) Disconnect(ctx context.Context, from string) error {
	_, caller, err := g.callerSlot(from)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(g.conns, func(c *connection) bool { return c.caller == caller })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotConnected, caller.FullName())
	}
	c := g.conns[idx]
	g.drop(c)
	ctxlog.FromContext(ctx).Debug("Call disconnected.", "call", c.Class, "from", c.From, "to", c.To)
	return nil
}

func (g *Graph) drop(c *connection) {
	c.caller.Disconnect()
	g.arena.Remove(c.handle)
	_ = g.topo.RemoveEdge(c.producer, c.consumer)
	g.conns = slices.DeleteFunc(g.conns, func(o *connection) bool { return o == c })
}

// Create creates every module that is not created yet, producers first. If
// one fails, the modules created by this call are released in reverse
// order and the error is returned.
func (g *Graph) Create(ctx context.Context) error {
	order, err := g.topo.TopologicalSort()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCycle, err)
	}

	var done []*Instance
	for _, name := range order {
		inst := g.instances[name]
		if inst.created {
			continue
		}
		mctx := ctxlog.With(ctx, "module", inst.Name, "class", inst.Class)
		if err := inst.Module.Create(mctx); err != nil {
			ctxlog.FromContext(ctx).Error("Module creation failed, rolling back.", "module", inst.Name, "class", inst.Class, "error", err)
			for i := len(done) - 1; i >= 0; i-- {
				done[i].Module.Release(ctxlog.With(ctx, "module", done[i].Name))
				done[i].created = false
			}
			return fmt.Errorf("create module %s (%s): %w", inst.Name, inst.Class, err)
		}
		inst.created = true
		done = append(done, inst)
	}
	ctxlog.FromContext(ctx).Debug("Graph created.", "modules", len(done), "calls", g.arena.Len())
	return nil
}

// Release releases every created module, consumers first.
func (g *Graph) Release(ctx context.Context) {
	order, err := g.topo.TopologicalSort()
	if err != nil {
		// Connect never admits a cycle; fall back to reverse insertion.
		order = slices.Clone(g.order)
	}
	for i := len(order) - 1; i >= 0; i-- {
		inst := g.instances[order[i]]
		if !inst.created {
			continue
		}
		inst.Module.Release(ctxlog.With(ctx, "module", inst.Name, "class", inst.Class))
		inst.created = false
	}
}

func (g *Graph) instance(name string) (*Instance, error) {
	canonical, err := slotid.Canonical(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModuleNotFound, err)
	}
	inst, ok := g.instances[canonical]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, canonical)
	}
	return inst, nil
}

func (g *Graph) splitSlot(fullName string) (*Instance, string, error) {
	moduleName, slot, err := slotid.SplitSlot(fullName)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrSlotNotFound, err)
	}
	inst, err := g.instance(moduleName)
	if err != nil {
		return nil, "", err
	}
	return inst, slot, nil
}

func (g *Graph) callerSlot(fullName string) (*Instance, *module.CallerSlot, error) {
	inst, slot, err := g.splitSlot(fullName)
	if err != nil {
		return nil, nil, err
	}
	s, ok := inst.Module.ModuleBase().CallerSlot(slot)
	if !ok {
		return nil, nil, fmt.Errorf("%w: module %s has no caller slot '%s'", ErrSlotNotFound, inst.Name, slot)
	}
	return inst, s, nil
}

func (g *Graph) calleeSlot(fullName string) (*Instance, *module.CalleeSlot, error) {
	inst, slot, err := g.splitSlot(fullName)
	if err != nil {
		return nil, nil, err
	}
	s, ok := inst.Module.ModuleBase().CalleeSlot(slot)
	if !ok {
		return nil, nil, fmt.Errorf("%w: module %s has no callee slot '%s'", ErrSlotNotFound, inst.Name, slot)
	}
	return inst, s, nil
}
