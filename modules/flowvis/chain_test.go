package flowvis_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/callgrid/internal/ctxlog"
	"github.com/specialistvlad/callgrid/internal/graph"
	"github.com/specialistvlad/callgrid/internal/registry"
	"github.com/specialistvlad/callgrid/internal/view"
	"github.com/specialistvlad/callgrid/modules/flowvis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, write func(f *os.File) error) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, write(f))
	require.NoError(t, f.Close())
}

func TestTopologyRenderChain(t *testing.T) {
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.Discard())
	dir := t.TempDir()
	fieldPath := filepath.Join(dir, "field.raw")
	csPath := filepath.Join(dir, "structures.raw")

	field := &flowvis.VectorField{Header: flowvis.FieldHeader{
		Dimension: 2, Components: 2,
		X: flowvis.Axis{Count: 4, Min: -1, Max: 1},
		Y: flowvis.Axis{Count: 4, Min: -1, Max: 1},
	}}
	pos := field.Positions()
	for i := 0; i < len(pos); i += 2 {
		field.Vectors = append(field.Vectors, -pos[i], -pos[i+1])
	}
	writeFile(t, fieldPath, func(f *os.File) error { return flowvis.WriteVectorField(f, field) })
	writeFile(t, csPath, func(f *os.File) error {
		return flowvis.WriteConvergenceStructures(f, []flowvis.StructureRecord{{Type: flowvis.StructurePoint, Coords: []float32{0, 0}}})
	})

	reg := registry.New()
	reg.Load(&view.Plugin{}, &flowvis.Module{})
	require.NoError(t, reg.ValidateRegistry(ctx))

	g := graph.New(ctx, reg)
	for _, m := range []struct{ class, name string }{
		{"View3D", "::inst::view"},
		{"TriangleMeshRenderer", "::inst::renderer"},
		{"ImplicitTopology", "::inst::topology"},
		{"ResultFile", "::inst::results"},
	} {
		_, err := g.AddModule(ctx, m.class, m.name)
		require.NoError(t, err)
	}
	require.NoError(t, g.Connect(ctx, "CallRender3D", "::inst::view::rendering", "::inst::renderer::rendering"))
	require.NoError(t, g.Connect(ctx, "CallTriangleMesh", "::inst::renderer::triangles", "::inst::topology::triangles"))
	require.NoError(t, g.Connect(ctx, "CallMeshData", "::inst::renderer::mesh_data", "::inst::topology::mesh_data"))
	require.NoError(t, g.Connect(ctx, "CallResultWriter", "::inst::topology::result_writer", "::inst::results::writer"))
	require.NoError(t, g.SetParamValue("::inst::topology::vector_field_path", fieldPath))
	require.NoError(t, g.SetParamValue("::inst::topology::convergence_structures_path", csPath))
	require.NoError(t, g.SetParamValue("::inst::results::path", filepath.Join(dir, "result.msgpack")))
	require.NoError(t, g.Create(ctx))
	t.Cleanup(func() { g.Release(ctx) })

	vm, _ := g.Module("::inst::view")
	v := vm.(*view.View3D)
	tm, _ := g.Module("::inst::topology")
	topo := tm.(*flowvis.ImplicitTopology)
	rm, _ := g.Module("::inst::renderer")
	renderer := rm.(*flowvis.TriangleMeshRenderer)

	res := v.RenderFrame(ctx, 0)
	require.False(t, res.Title, res.Reason)
	assert.Zero(t, res.Stats.Triangles, "no mesh before the computation runs")
	assert.True(t, res.Bounds.BBox.IsValid())

	require.NoError(t, g.SetParamValue("::inst::topology::start", ""))
	deadline := time.Now().Add(10 * time.Second)
	for topo.State() == flowvis.Running && time.Now().Before(deadline) {
		res = v.RenderFrame(ctx, 0)
	}
	require.Equal(t, flowvis.Finished, topo.State())
	res = v.RenderFrame(ctx, 0)
	require.False(t, res.Title, res.Reason)
	assert.Equal(t, 18, res.Stats.Triangles)
	colors, ok := renderer.ColorRange()
	require.True(t, ok)
	assert.Equal(t, [2]float32{0, 0}, colors, "every forward particle reaches the center")

	require.NoError(t, g.SetParamValue("::inst::topology::num_integration_steps", "5"), "variable parameters unlock once finished")
	err := g.SetParamValue("::inst::topology::label_range_min", "3")
	require.ErrorIs(t, err, graph.ErrReadOnly)

	require.NoError(t, g.SetParamValue("::inst::topology::save", ""))
	assert.FileExists(t, filepath.Join(dir, "result.msgpack"))
}
