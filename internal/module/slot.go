package module

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/callgrid/internal/call"
)

// CallerSlot is an outbound attachment point holding at most one call.
type CallerSlot struct {
	name       string
	doc        string
	owner      *Base
	compatible []string
	arena      *call.Arena
	handle     call.Handle
}

func (s *CallerSlot) Name() string { return s.name }

func (s *CallerSlot) Doc() string { return s.doc }

func (s *CallerSlot) FullName() string { return s.owner.FullName(s.name) }

// Compatible lists the call classes this slot accepts.
func (s *CallerSlot) Compatible() []string { return s.compatible }

// IsCompatible reports whether calls of className may be connected.
func (s *CallerSlot) IsCompatible(className string) bool {
	return slices.Contains(s.compatible, className)
}

// Connect stores the handle of a call living in arena.
func (s *CallerSlot) Connect(arena *call.Arena, h call.Handle) error {
	if s.IsConnected() {
		return fmt.Errorf("caller slot %s is already connected", s.FullName())
	}
	s.arena = arena
	s.handle = h
	return nil
}

// Disconnect forgets the current call and returns its handle.
func (s *CallerSlot) Disconnect() call.Handle {
	h := s.handle
	s.handle = call.Handle{}
	s.arena = nil
	return h
}

// Handle returns the handle of the connected call, or the zero handle.
func (s *CallerSlot) Handle() call.Handle { return s.handle }

// IsConnected reports whether the slot references a live call.
func (s *CallerSlot) IsConnected() bool {
	_, ok := s.Call()
	return ok
}

// Call resolves the connected call.
func (s *CallerSlot) Call() (call.Call, bool) {
	return s.arena.Get(s.handle)
}

// CallAs returns the connected call as T. It reports false when the slot is
// unconnected or holds a different class; callers check it every frame
// because the graph may be rewired between frames.
func CallAs[T call.Call](s *CallerSlot) (T, bool) {
	c, ok := s.Call()
	if !ok {
		var zero T
		return zero, false
	}
	return call.As[T](c)
}

type binding struct {
	class    string
	function string
	handler  call.Handler
}

// CalleeSlot is an inbound attachment point. It may serve several call
// classes and any number of callers.
type CalleeSlot struct {
	name     string
	doc      string
	owner    *Base
	bindings []binding
}

func (s *CalleeSlot) Name() string { return s.name }

func (s *CalleeSlot) Doc() string { return s.doc }

func (s *CalleeSlot) FullName() string { return s.owner.FullName(s.name) }

// SetCallback registers the handler serving function functionName of call
// class className.
func (s *CalleeSlot) SetCallback(className, functionName string, h call.Handler) {
	for _, b := range s.bindings {
		if b.class == className && b.function == functionName {
			panic(fmt.Sprintf("module: callback %s.%s registered twice on %s", className, functionName, s.name))
		}
	}
	s.bindings = append(s.bindings, binding{class: className, function: functionName, handler: h})
}

// Serves reports whether any callback is registered for className.
func (s *CalleeSlot) Serves(className string) bool {
	return slices.ContainsFunc(s.bindings, func(b binding) bool { return b.class == className })
}

// Classes lists the served call classes in registration order.
func (s *CalleeSlot) Classes() []string {
	var out []string
	for _, b := range s.bindings {
		if !slices.Contains(out, b.class) {
			out = append(out, b.class)
		}
	}
	return out
}

// Functions lists the function names bound for className.
func (s *CalleeSlot) Functions(className string) []string {
	var out []string
	for _, b := range s.bindings {
		if b.class == className {
			out = append(out, b.function)
		}
	}
	return out
}

// DispatchTable resolves the callbacks for desc by function name, in the
// class's function order.
func (s *CalleeSlot) DispatchTable(desc *call.Description) ([]call.Handler, error) {
	if !s.Serves(desc.ClassName) {
		return nil, fmt.Errorf("callee slot %s does not serve %s", s.FullName(), desc.ClassName)
	}
	table := make([]call.Handler, desc.FunctionCount())
	for i, fn := range desc.Functions {
		for _, b := range s.bindings {
			if b.class == desc.ClassName && b.function == fn {
				table[i] = b.handler
			}
		}
		if table[i] == nil {
			return nil, fmt.Errorf("callee slot %s has no callback for %s.%s", s.FullName(), desc.ClassName, fn)
		}
	}
	return table, nil
}
