package app

import (
	"github.com/specialistvlad/callgrid/internal/registry"
	"github.com/specialistvlad/callgrid/internal/view"
	"github.com/specialistvlad/callgrid/modules/flowvis"
	"github.com/specialistvlad/callgrid/modules/geometry"
	"github.com/specialistvlad/callgrid/modules/infovis"
	"github.com/specialistvlad/callgrid/modules/mesh"
)

// corePlugins is the definitive list of all module packages that are
// compiled into the callgrid binary.
var corePlugins = []registry.Plugin{
	&view.Plugin{},
	&mesh.Module{},
	&geometry.Module{},
	&flowvis.Module{},
	&infovis.Module{},
}
