package flowvis

import (
	"slices"

	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/meta"
)

// TriangleMesh is a 2D mesh embedded in the z=0 plane.
type TriangleMesh struct {
	Vertices []float32
	Indices  []uint32
}

func (m *TriangleMesh) TriangleCount() int { return len(m.Indices) / 3 }

func (m *TriangleMesh) VertexCount() int { return len(m.Vertices) / 3 }

// CallTriangleMesh transports the topology mesh. GetExtent publishes the
// domain rectangle as bounding box.
type CallTriangleMesh struct {
	call.Generic[*TriangleMesh, meta.Spatial3D]
}

// DataSet is one named scalar per mesh vertex with its value range.
type DataSet struct {
	Data []float32
	Min  float32
	Max  float32
}

// MeshData holds the named scalar sets of a mesh.
type MeshData struct {
	sets  map[string]*DataSet
	names []string
}

func NewMeshData() *MeshData { return &MeshData{sets: make(map[string]*DataSet)} }

// Declare announces a data set without values.
func (d *MeshData) Declare(name string) {
	if _, ok := d.sets[name]; !ok {
		d.sets[name] = nil
		d.names = append(d.names, name)
	}
}

// Set stores a data set under name.
func (d *MeshData) Set(name string, ds *DataSet) {
	d.Declare(name)
	d.sets[name] = ds
}

// Get returns the data set, or nil when it is only declared.
func (d *MeshData) Get(name string) *DataSet { return d.sets[name] }

// Names lists the declared sets in declaration order.
func (d *MeshData) Names() []string { return slices.Clone(d.names) }

// CallMeshData transports the per-vertex scalar sets of the topology mesh.
type CallMeshData struct {
	call.Generic[*MeshData, meta.Basic]
}

// CallResultReader asks the callee to load a previous result.
type CallResultReader struct {
	call.Base
	Result *Result
}

// CallResultWriter hands a finished result to the callee.
type CallResultWriter struct {
	call.Base
	Result *Result
}

var (
	CallTriangleMeshDescription = &call.Description{
		ClassName: "CallTriangleMesh",
		Doc:       "Call transporting a triangle mesh",
		Functions: []string{"GetData", "GetExtent"},
		New:       func() call.Call { return &CallTriangleMesh{} },
	}
	CallMeshDataDescription = &call.Description{
		ClassName: "CallMeshData",
		Doc:       "Call transporting named per-vertex data",
		Functions: []string{"GetData", "GetExtent"},
		New:       func() call.Call { return &CallMeshData{} },
	}
	CallResultReaderDescription = &call.Description{
		ClassName: "CallResultReader",
		Doc:       "Call reading implicit topology results",
		Functions: []string{"Read"},
		New:       func() call.Call { return &CallResultReader{} },
	}
	CallResultWriterDescription = &call.Description{
		ClassName: "CallResultWriter",
		Doc:       "Call writing implicit topology results",
		Functions: []string{"Write"},
		New:       func() call.Call { return &CallResultWriter{} },
	}
)

// Mesh data set names.
const (
	SetLabelsForward        = "labels (forward)"
	SetLabelsBackward       = "labels (backward)"
	SetDistancesForward     = "distances (forward)"
	SetDistancesBackward    = "distances (backward)"
	SetTerminationsForward  = "terminations (forward)"
	SetTerminationsBackward = "terminations (backward)"
	SetGradientsForward     = "gradients (forward)"
	SetGradientsBackward    = "gradients (backward)"
)

// SetNames lists every data set ImplicitTopology publishes.
var SetNames = []string{
	SetLabelsForward, SetLabelsBackward,
	SetDistancesForward, SetDistancesBackward,
	SetTerminationsForward, SetTerminationsBackward,
	SetGradientsForward, SetGradientsBackward,
}
