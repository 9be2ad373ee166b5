package graph

import (
	"fmt"

	"github.com/specialistvlad/callgrid/internal/param"
	"github.com/specialistvlad/callgrid/internal/slotid"
	"github.com/zclconf/go-cty/cty"
)

// NamedParam is a parameter together with its full name.
type NamedParam struct {
	FullName string
	Param    param.Param
}

// Param resolves a parameter by full name, e.g. "::inst::view::anim::speed".
// Parameter names may contain "::", so the longest matching module name
// wins.
func (g *Graph) Param(fullName string) (param.Param, error) {
	addr, err := slotid.Parse(fullName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSlotNotFound, err)
	}

	var owner *Instance
	for _, split := range addr.Splits() {
		inst, ok := g.instances[split[0]]
		if !ok {
			continue
		}
		if owner == nil {
			owner = inst
		}
		if p, ok := inst.Module.ModuleBase().Param(split[1]); ok {
			return p, nil
		}
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: no module owns '%s'", ErrModuleNotFound, fullName)
	}
	return nil, fmt.Errorf("%w: parameter '%s'", ErrSlotNotFound, fullName)
}

// Params lists every parameter of every module in insertion order.
func (g *Graph) Params() []NamedParam {
	var out []NamedParam
	for _, inst := range g.Instances() {
		for _, p := range inst.Module.ModuleBase().Params() {
			out = append(out, NamedParam{FullName: slotid.Join(inst.Name, p.Name), Param: p.Param})
		}
	}
	return out
}

// ParamValue returns the string form of a parameter's value.
func (g *Graph) ParamValue(fullName string) (string, error) {
	p, err := g.Param(fullName)
	if err != nil {
		return "", err
	}
	return p.ValueString(), nil
}

// SetParamValue parses value into the parameter. GUI-read-only parameters
// are rejected with ErrReadOnly.
func (g *Graph) SetParamValue(fullName, value string) error {
	p, err := g.writableParam(fullName)
	if err != nil {
		return err
	}
	if err := p.SetString(value); err != nil {
		return fmt.Errorf("set %s: %w", fullName, err)
	}
	return nil
}

// SetParamCty converts v into the parameter. GUI-read-only parameters are
// rejected with ErrReadOnly.
func (g *Graph) SetParamCty(fullName string, v cty.Value) error {
	p, err := g.writableParam(fullName)
	if err != nil {
		return err
	}
	if err := p.SetCty(v); err != nil {
		return fmt.Errorf("set %s: %w", fullName, err)
	}
	return nil
}

func (g *Graph) writableParam(fullName string) (param.Param, error) {
	p, err := g.Param(fullName)
	if err != nil {
		return nil, err
	}
	if p.IsGUIReadOnly() {
		return nil, fmt.Errorf("%w: %s", ErrReadOnly, fullName)
	}
	return p, nil
}
