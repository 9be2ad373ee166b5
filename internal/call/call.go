package call

import "fmt"

// Function indices shared by every generic call class.
const (
	FnGetData     = 0
	FnGetMetaData = 1
	FnGetExtent   = 1
)

// GenericFunctions is the function table of generic data calls.
var GenericFunctions = []string{"GetData", "GetMetaData"}

// Handler serves one function of one call class. It receives the call that
// was invoked and type-checks it with As.
type Handler func(c Call) bool

// Description is the static contract of a call class.
type Description struct {
	ClassName string
	Doc       string
	Functions []string
	New       func() Call
}

// FunctionCount returns the number of functions the class supports.
func (d *Description) FunctionCount() int { return len(d.Functions) }

// FunctionName returns the name of function idx, or "" when out of range.
func (d *Description) FunctionName(idx int) string {
	if idx < 0 || idx >= len(d.Functions) {
		return ""
	}
	return d.Functions[idx]
}

// FunctionIndex resolves a function name to its dispatch index.
func (d *Description) FunctionIndex(name string) (int, bool) {
	for i, fn := range d.Functions {
		if fn == name {
			return i, true
		}
	}
	return -1, false
}

// Call is implemented by every call class through an embedded Base.
type Call interface {
	Description() *Description
	Invoke(fn int) bool
	Endpoints() (caller, callee string)
	base() *Base
}

// Base carries the bound dispatch table of a call instance.
type Base struct {
	self   Call
	desc   *Description
	table  []Handler
	caller string
	callee string
}

func (b *Base) base() *Base { return b }

// Description returns the class contract, or nil before the call is bound.
func (b *Base) Description() *Description { return b.desc }

// Endpoints returns the full names of the connected caller and callee slots.
func (b *Base) Endpoints() (caller, callee string) { return b.caller, b.callee }

// Invoke runs the callback bound to function fn.
func (b *Base) Invoke(fn int) bool {
	if b.self == nil || fn < 0 || fn >= len(b.table) || b.table[fn] == nil {
		return false
	}
	return b.table[fn](b.self)
}

// Bind installs the dispatch table on c. table must hold one handler per
// function of desc, in function order.
func Bind(c Call, desc *Description, table []Handler, caller, callee string) error {
	if len(table) != desc.FunctionCount() {
		return fmt.Errorf("call %s: dispatch table has %d entries, class declares %d functions", desc.ClassName, len(table), desc.FunctionCount())
	}
	b := c.base()
	b.self = c
	b.desc = desc
	b.table = table
	b.caller = caller
	b.callee = callee
	return nil
}

// Unbind drops the dispatch table so that every further Invoke fails.
func Unbind(c Call) {
	b := c.base()
	b.self = nil
	b.table = nil
}

// As is the checked downcast of a call to its concrete class.
func As[T Call](c Call) (T, bool) {
	t, ok := c.(T)
	return t, ok
}

// Generic is a call carrying one data value and one metadata value. The
// callee writes both, the caller reads them; the caller may also seed the
// data value with a collection it owns.
type Generic[D, M any] struct {
	Base
	data    D
	hasData bool
	meta    M
}

func (g *Generic[D, M]) SetData(d D) {
	g.data = d
	g.hasData = true
}

func (g *Generic[D, M]) Data() D { return g.data }

// HasData reports whether either side stored a data value.
func (g *Generic[D, M]) HasData() bool { return g.hasData }

func (g *Generic[D, M]) SetMetaData(m M) { g.meta = m }

func (g *Generic[D, M]) MetaData() M { return g.meta }
