package param

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Kind names a parameter type in logs and error messages.
type Kind string

const (
	KindBool     Kind = "bool"
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindString   Kind = "string"
	KindFilePath Kind = "filepath"
	KindEnum     Kind = "enum"
	KindButton   Kind = "button"
	KindVector3  Kind = "vector3"
	KindColor    Kind = "color"
)

// Param is the type-erased view of a parameter used by the graph, the
// project loaders and remote control. Modules keep the concrete typed
// pointer and read values through it.
type Param interface {
	Kind() Kind
	IsDirty() bool
	ResetDirty()
	ForceSetDirty()
	IsGUIReadOnly() bool
	SetGUIReadOnly(readOnly bool)
	ValueString() string
	SetString(s string) error
	SetCty(v cty.Value) error
	OnUpdate(fn func())
}

// state holds the flags shared by every parameter kind.
type state struct {
	dirty    bool
	readOnly bool
	onUpdate []func()
}

func (s *state) IsDirty() bool { return s.dirty }

// ResetDirty clears the dirty flag. Only the code path that acted on the
// change may call it.
func (s *state) ResetDirty() { s.dirty = false }

func (s *state) ForceSetDirty() { s.dirty = true }

func (s *state) IsGUIReadOnly() bool { return s.readOnly }

func (s *state) SetGUIReadOnly(readOnly bool) { s.readOnly = readOnly }

// OnUpdate registers fn to run after every dirtying change. Callbacks run
// synchronously on the goroutine that set the value.
func (s *state) OnUpdate(fn func()) { s.onUpdate = append(s.onUpdate, fn) }

func (s *state) markChanged() {
	s.dirty = true
	for _, fn := range s.onUpdate {
		fn()
	}
}

// codec adapts one Go value type to the string and cty boundaries.
type codec[T comparable] struct {
	parse  func(string) (T, error)
	format func(T) string
	cty    func(cty.Value) (T, error)
	clamp  func(T) T
}

// Value is a typed parameter cell.
type Value[T comparable] struct {
	state
	kind  Kind
	val   T
	codec codec[T]
}

func newValue[T comparable](kind Kind, def T, c codec[T]) *Value[T] {
	p := &Value[T]{kind: kind, codec: c}
	if c.clamp != nil {
		def = c.clamp(def)
	}
	p.val = def
	return p
}

func (p *Value[T]) Kind() Kind { return p.kind }

// Value returns the current value.
func (p *Value[T]) Value() T { return p.val }

// Set stores v and marks the parameter dirty when the stored value changes.
// Setting an equal value leaves the dirty flag untouched.
func (p *Value[T]) Set(v T) { p.set(v, true) }

// SetValueQuiet stores v without marking the parameter dirty and without
// running update callbacks. Modules use it to publish derived values back
// into their own parameters.
func (p *Value[T]) SetValueQuiet(v T) { p.set(v, false) }

func (p *Value[T]) set(v T, dirty bool) {
	if p.codec.clamp != nil {
		v = p.codec.clamp(v)
	}
	if v == p.val {
		return
	}
	p.val = v
	if dirty {
		p.markChanged()
	}
}

func (p *Value[T]) ValueString() string { return p.codec.format(p.val) }

func (p *Value[T]) SetString(s string) error {
	v, err := p.codec.parse(s)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", p.kind, s, err)
	}
	p.Set(v)
	return nil
}

func (p *Value[T]) SetCty(v cty.Value) error {
	if v.IsNull() || !v.IsKnown() {
		return fmt.Errorf("invalid %s value: must be a known, non-null value", p.kind)
	}
	tv, err := p.codec.cty(v)
	if err != nil {
		return fmt.Errorf("invalid %s value: %w", p.kind, err)
	}
	p.Set(tv)
	return nil
}

// Group is a set of parameters that invalidate the same derived state.
type Group []Param

// AnyDirty reports whether at least one member changed.
func (g Group) AnyDirty() bool {
	for _, p := range g {
		if p.IsDirty() {
			return true
		}
	}
	return false
}

// ResetDirty clears every member.
func (g Group) ResetDirty() {
	for _, p := range g {
		p.ResetDirty()
	}
}

// SetGUIReadOnly locks or unlocks every member.
func (g Group) SetGUIReadOnly(readOnly bool) {
	for _, p := range g {
		p.SetGUIReadOnly(readOnly)
	}
}
