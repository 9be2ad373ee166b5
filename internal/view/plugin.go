package view

import (
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/registry"
)

// Plugin registers CallRender3D and View3D.
type Plugin struct{}

func (p *Plugin) Register(r *registry.Registry) {
	r.RegisterCall(CallRender3DDescription)
	r.RegisterModule(&registry.ModuleDescription{
		ClassName: "View3D",
		Doc:       "3D view driving a renderer chain once per frame",
		IsView:    true,
		New:       func() module.Module { return NewView3D() },
	})
}
