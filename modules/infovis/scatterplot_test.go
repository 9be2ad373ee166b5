package infovis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/meta"
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bind(t *testing.T, arena *call.Arena, desc *call.Description, from *module.CallerSlot, to *module.CalleeSlot) {
	t.Helper()
	c := desc.New()
	table, err := to.DispatchTable(desc)
	require.NoError(t, err)
	require.NoError(t, call.Bind(c, desc, table, from.FullName(), to.FullName()))
	require.NoError(t, from.Connect(arena, arena.Insert(c)))
}

type matrixHarness struct {
	src *TableSource
	m   *ScatterplotMatrix
	cr  *view.CallRender3D
}

func newMatrixHarness(t *testing.T) *matrixHarness {
	t.Helper()
	arena := call.NewArena()
	h := &matrixHarness{src: NewTableSource(), m: NewScatterplotMatrix()}
	require.NoError(t, h.src.columns.SetString("3"))
	require.NoError(t, h.src.rows.SetString("10"))
	require.NoError(t, h.src.Create(context.Background()))
	bind(t, arena, CallTableDescription, h.m.ftIn, h.src.out)

	var v module.Base
	in := v.MakeCallerSlot("rendering", "view", view.CallRender3DDescription.ClassName)
	bind(t, arena, view.CallRender3DDescription, in, h.m.rendering)
	var ok bool
	h.cr, ok = module.CallAs[*view.CallRender3D](in)
	require.True(t, ok)
	return h
}

func (h *matrixHarness) render(t *testing.T) view.DrawStats {
	t.Helper()
	require.True(t, h.cr.Invoke(view.FnGetExtents))
	before := h.cr.Stats()
	require.True(t, h.cr.Invoke(view.FnRender))
	s := h.cr.Stats()
	s.Batches -= before.Batches
	s.Lines -= before.Lines
	s.Points -= before.Points
	s.Labels -= before.Labels
	s.Triangles -= before.Triangles
	return s
}

func TestTableSource(t *testing.T) {
	src := NewTableSource()
	require.NoError(t, src.Create(context.Background()))
	require.NotNil(t, src.Table())
	assert.Equal(t, 100, src.Table().Rows)
	assert.Equal(t, []string{"c0", "c1", "c2", "c3"}, src.Table().ColumnNames())

	var b module.Base
	in := b.MakeCallerSlot("in", "table", CallTableDescription.ClassName)
	bind(t, call.NewArena(), CallTableDescription, in, src.out)
	tc, _ := module.CallAs[*CallTable](in)

	require.True(t, tc.Invoke(FnGetHash))
	first := tc.MetaData().DataHash
	require.True(t, tc.Invoke(FnGetHash))
	assert.Equal(t, first, tc.MetaData().DataHash)
	assert.Equal(t, uint32(1), tc.MetaData().FrameCount)

	require.NoError(t, src.columns.SetString("2"))
	require.True(t, tc.Invoke(FnGetData))
	assert.Greater(t, tc.MetaData().DataHash, first)
	assert.Equal(t, 2, tc.Data().ColumnCount())

	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n3,4\n"), 0o644))
	require.NoError(t, src.path.SetString(path))
	require.True(t, tc.Invoke(FnGetData))
	assert.Equal(t, []string{"a", "b"}, tc.Data().ColumnNames())

	require.NoError(t, os.WriteFile(path, []byte("a,b\n1\n"), 0o644))
	require.NoError(t, src.seed.SetString("7"))
	assert.False(t, tc.Invoke(FnGetData), "a broken file yields no table")
}

func TestScatterplotMatrix_Layout(t *testing.T) {
	h := newMatrixHarness(t)
	require.True(t, h.cr.Invoke(view.FnGetExtents))

	plots := h.m.Plots()
	require.Len(t, plots, 3)
	assert.Equal(t, [2]int{0, 1}, [2]int{plots[0].X, plots[0].Y})
	assert.Equal(t, [2]int{1, 2}, [2]int{plots[2].X, plots[2].Y})
	assert.Equal(t, float32(11), plots[2].OffsetX, "cells are size+margin apart")
	assert.Equal(t, float32(22), plots[2].OffsetY)
	assert.True(t, h.cr.BoundingBoxes().BBox.Equal(meta.NewRect(0, 0, 32, 32)))
	assert.Equal(t, []string{"c0", "c1", "c2"}, h.m.Columns())
	assert.Equal(t, 1, h.m.Rebuilds())
}

func TestScatterplotMatrix_Validate(t *testing.T) {
	h := newMatrixHarness(t)
	h.render(t)
	require.Equal(t, 1, h.m.Rebuilds())

	h.render(t)
	assert.Equal(t, 1, h.m.Rebuilds(), "unchanged hash, frame count and data parameters")

	require.NoError(t, h.m.cellSize.SetString("4"))
	h.render(t)
	assert.Equal(t, 2, h.m.Rebuilds())
	assert.False(t, h.m.cellSize.IsDirty())
	assert.True(t, h.cr.BoundingBoxes().BBox.Equal(meta.NewRect(0, 0, 14, 14)))

	require.NoError(t, h.m.valueSelector.SetString("c2"))
	require.NoError(t, h.m.labelSelector.SetString("nope"))
	h.render(t)
	value, label := h.m.Selectors()
	assert.Equal(t, 2, value)
	assert.Equal(t, 0, label)

	require.NoError(t, h.src.rows.SetString("20"))
	h.render(t)
	assert.Equal(t, 4, h.m.Rebuilds(), "a new table hash rebuilds")
}

func TestScatterplotMatrix_Screen(t *testing.T) {
	h := newMatrixHarness(t)
	h.render(t)
	require.Equal(t, 1, h.m.ScreenRebuilds())
	h.render(t)
	assert.Equal(t, 1, h.m.ScreenRebuilds())

	require.NoError(t, h.m.kernelWidth.SetString("2"))
	h.render(t)
	assert.Equal(t, 2, h.m.ScreenRebuilds())
	assert.Equal(t, 1, h.m.Rebuilds(), "screen parameters never rebuild the layout")

	cam := h.cr.Camera()
	cam.Position = v3.Vec{Z: 50}
	h.cr.SetCamera(cam)
	h.render(t)
	assert.Equal(t, 3, h.m.ScreenRebuilds(), "a camera change invalidates the screen")
}

func TestScatterplotMatrix_Stats(t *testing.T) {
	tests := []struct {
		geometry string
		axis     string
		want     view.DrawStats
	}{
		{"Point", "None", view.DrawStats{Batches: 1, Points: 30}},
		{"Line", "Minimalistic", view.DrawStats{Batches: 1, Lines: 27 + 36}},
		{"Triangulation", "None", view.DrawStats{Batches: 1, Triangles: 24}},
		{"Text", "Scientific", view.DrawStats{Batches: 1, Lines: 36, Labels: 30 + 3 + 30}},
	}
	for _, tt := range tests {
		t.Run(tt.geometry, func(t *testing.T) {
			h := newMatrixHarness(t)
			require.NoError(t, h.m.geometryType.SetString(tt.geometry))
			require.NoError(t, h.m.axisMode.SetString(tt.axis))
			assert.Equal(t, tt.want, h.render(t))
		})
	}
}

func TestScatterplotMatrix_Unconnected(t *testing.T) {
	m := NewScatterplotMatrix()
	var v module.Base
	in := v.MakeCallerSlot("rendering", "view", view.CallRender3DDescription.ClassName)
	bind(t, call.NewArena(), view.CallRender3DDescription, in, m.rendering)
	cr, _ := module.CallAs[*view.CallRender3D](in)

	assert.True(t, cr.Invoke(view.FnGetExtents), "extents never fail")
	assert.False(t, cr.BoundingBoxes().BBox.IsValid())
	assert.False(t, cr.Invoke(view.FnRender))
}
