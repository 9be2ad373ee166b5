package config

import "github.com/zclconf/go-cty/cty"

// Project is the unified, format-agnostic representation of a project:
// the module instances to create, the calls between them and the initial
// parameter values. Declaration order is preserved.
type Project struct {
	Views   []*ModuleDef
	Modules []*ModuleDef
	Params  []*ParamDef
	Calls   []*CallDef
}

// ModuleDef declares one module instance. Views use the same shape.
type ModuleDef struct {
	Class string
	// Name is the full instance name, e.g. "::inst::gpu".
	Name   string
	Source string
}

// ParamDef assigns an initial value to a parameter by full name.
type ParamDef struct {
	Name   string
	Value  cty.Value
	Source string
}

// CallDef connects the caller slot From to the callee slot To.
type CallDef struct {
	Class  string
	From   string
	To     string
	Source string
}

// Merge appends everything declared in other.
func (p *Project) Merge(other *Project) {
	if other == nil {
		return
	}
	p.Views = append(p.Views, other.Views...)
	p.Modules = append(p.Modules, other.Modules...)
	p.Params = append(p.Params, other.Params...)
	p.Calls = append(p.Calls, other.Calls...)
}

// IsEmpty reports whether the project declares nothing at all.
func (p *Project) IsEmpty() bool {
	return len(p.Views)+len(p.Modules)+len(p.Params)+len(p.Calls) == 0
}
