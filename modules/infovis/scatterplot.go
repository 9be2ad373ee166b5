package infovis

import (
	"math"

	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/meta"
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/param"
	"github.com/specialistvlad/callgrid/internal/view"
)

const (
	GeometryPoint = iota
	GeometryLine
	GeometryTriangulation
	GeometryText
)

const (
	AxisNone = iota
	AxisMinimalistic
	AxisScientific
)

const float32Eps = 1.1920929e-7

// Plot is one cell of the matrix: column X against column Y.
type Plot struct {
	X, Y                   int
	OffsetX, OffsetY, Size float32
	MinX, MinY, MaxX, MaxY float32
	SmallTickX, SmallTickY float32
}

// ScatterplotMatrix lays out every pair of table columns and reports the
// primitives it draws.
type ScatterplotMatrix struct {
	module.Base

	ftIn      *module.CallerSlot
	rendering *module.CalleeSlot

	valueSelector           *param.String
	labelSelector           *param.String
	labelSize               *param.Float
	triangulationSmoothness *param.Int
	cellSize                *param.Float
	cellMargin              *param.Float

	geometryType *param.Enum
	kernelWidth  *param.Float
	axisMode     *param.Enum
	axisTicks    *param.Int
	axisColor    *param.Color
	alphaScaling *param.Float

	dataParams   param.Group
	screenParams param.Group

	hasData    bool
	dataHash   uint64
	dataTime   uint32
	frameCount uint32
	table      *Table
	columns    []string
	valueIdx   int
	labelIdx   int
	plots      []Plot
	bounds     meta.Cuboid

	lastCamera     view.Camera
	screenValid    bool
	trianglesValid bool
	textValid      bool
	triangles      int

	rebuilds      int
	screenRebuild int
}

func NewScatterplotMatrix() *ScatterplotMatrix {
	m := &ScatterplotMatrix{}
	m.ftIn = m.MakeCallerSlot("ftIn", "Float table input", CallTableDescription.ClassName)
	m.rendering = m.MakeCalleeSlot("rendering", "Renders the scatterplot matrix")
	m.rendering.SetCallback(view.CallRender3DDescription.ClassName, "Render", m.render)
	m.rendering.SetCallback(view.CallRender3DDescription.ClassName, "GetExtents", m.getExtents)

	m.valueSelector = module.AddParam(&m.Base, "valueSelector", param.NewString("undef"))
	m.labelSelector = module.AddParam(&m.Base, "labelSelector", param.NewString("undef"))
	m.labelSize = module.AddParam(&m.Base, "labelSize", param.NewFloatRange(0.1, float32Eps, math.MaxFloat32))
	m.triangulationSmoothness = module.AddParam(&m.Base, "triangulationSmoothness", param.NewIntRange(0, 0, math.MaxInt32))
	m.cellSize = module.AddParam(&m.Base, "cellSize", param.NewFloatRange(10, float32Eps, math.MaxFloat32))
	m.cellMargin = module.AddParam(&m.Base, "cellMargin", param.NewFloatRange(1, 0, math.MaxFloat32))

	m.geometryType = module.AddParam(&m.Base, "geometryType", param.NewEnum(GeometryPoint, map[int]string{
		GeometryPoint:         "Point",
		GeometryLine:          "Line",
		GeometryTriangulation: "Triangulation",
		GeometryText:          "Text",
	}))
	m.kernelWidth = module.AddParam(&m.Base, "kernelWidth", param.NewFloatRange(1, float32Eps, math.MaxFloat32))
	m.axisMode = module.AddParam(&m.Base, "axisMode", param.NewEnum(AxisMinimalistic, map[int]string{
		AxisNone:         "None",
		AxisMinimalistic: "Minimalistic",
		AxisScientific:   "Scientific",
	}))
	m.axisTicks = module.AddParam(&m.Base, "axisTicks", param.NewIntRange(5, 2, 100))
	m.axisColor = module.AddParam(&m.Base, "axisColor", param.NewColor([4]float32{1, 1, 1, 1}))
	m.alphaScaling = module.AddParam(&m.Base, "alphaScaling", param.NewFloatRange(1, 0, math.MaxFloat32))

	m.dataParams = param.Group{m.valueSelector, m.labelSelector, m.labelSize, m.triangulationSmoothness, m.cellSize, m.cellMargin}
	m.screenParams = param.Group{m.geometryType, m.kernelWidth, m.axisMode, m.axisTicks, m.axisColor, m.alphaScaling}
	return m
}

// Plots returns the current matrix layout.
func (m *ScatterplotMatrix) Plots() []Plot { return m.plots }

// Columns returns the column names offered to the selectors.
func (m *ScatterplotMatrix) Columns() []string { return m.columns }

// Selectors returns the resolved value and label column indices.
func (m *ScatterplotMatrix) Selectors() (value, label int) { return m.valueIdx, m.labelIdx }

// Rebuilds counts layout rebuilds.
func (m *ScatterplotMatrix) Rebuilds() int { return m.rebuilds }

// ScreenRebuilds counts redraws of the cached screen image.
func (m *ScatterplotMatrix) ScreenRebuilds() int { return m.screenRebuild }

// validate pulls the table and rebuilds the layout when the table, the
// frame count or a data parameter changed. A screen parameter change, or a
// camera change unless ignoreCamera is set, invalidates the screen image.
func (m *ScatterplotMatrix) validate(cr *view.CallRender3D, ignoreCamera bool) bool {
	tc, ok := module.CallAs[*CallTable](m.ftIn)
	if !ok || !tc.Invoke(FnGetHash) {
		return false
	}
	md := tc.MetaData()
	ts := md.FrameCount
	m.frameCount = ts
	md.FrameID = cr.FrameID()
	tc.SetMetaData(md)
	if !tc.Invoke(FnGetData) {
		return false
	}
	table := tc.Data()
	if table == nil || table.ColumnCount() == 0 {
		return false
	}

	cam := cr.Camera()
	if m.screenParams.AnyDirty() || (!ignoreCamera && cam != m.lastCamera) {
		m.screenValid = false
		m.screenParams.ResetDirty()
		m.lastCamera = cam
	}

	hash := tc.MetaData().DataHash
	if m.hasData && hash == m.dataHash && ts == m.dataTime && !m.dataParams.AnyDirty() {
		return true
	}
	if !m.hasData || hash != m.dataHash {
		m.columns = table.ColumnNames()
	}
	m.valueIdx = table.ColumnIndex(m.valueSelector.Value(), 0)
	m.labelIdx = table.ColumnIndex(m.labelSelector.Value(), 0)

	m.trianglesValid = false
	m.textValid = false
	m.table = table
	m.updateColumns()

	m.hasData = true
	m.dataHash = hash
	m.dataTime = ts
	m.dataParams.ResetDirty()
	m.rebuilds++
	return true
}

func (m *ScatterplotMatrix) updateColumns() {
	size := m.cellSize.Value()
	margin := m.cellMargin.Value()
	cols := m.table.Columns

	m.plots = nil
	for y := range cols {
		for x := 0; x < y; x++ {
			m.plots = append(m.plots, Plot{
				X:          x,
				Y:          y,
				OffsetX:    float32(x) * (size + margin),
				OffsetY:    float32(y) * (size + margin),
				Size:       size,
				MinX:       cols[x].Min,
				MinY:       cols[y].Min,
				MaxX:       cols[x].Max,
				MaxY:       cols[y].Max,
				SmallTickX: float32(rangeToSmallStep(float64(cols[x].Min), float64(cols[x].Max))),
				SmallTickY: float32(rangeToSmallStep(float64(cols[y].Min), float64(cols[y].Max))),
			})
		}
	}
	extent := float64(len(cols))*float64(size+margin) - float64(margin)
	m.bounds = meta.NewRect(0, 0, extent, extent)
}

// rangeToSmallStep picks a tick spacing of the form k/2 * 10^e that splits
// the range into roughly 100 steps.
func rangeToSmallStep(lo, hi float64) float64 {
	const smallSteps = 4.0 * 5.0 * 5.0
	delta := math.Abs(hi - lo)
	if delta == 0 {
		return 0
	}
	exponent := math.Ceil(math.Log10(delta/smallSteps)) - 1
	power := math.Pow(10, exponent)
	mantissa := math.Round(delta/smallSteps/power*2) / 2
	return mantissa * power
}

func (m *ScatterplotMatrix) getExtents(c call.Call) bool {
	cr, ok := call.As[*view.CallRender3D](c)
	if !ok {
		return false
	}
	m.validate(cr, true)
	md := cr.MetaData()
	md.DataHash = m.dataHash
	md.FrameCount = max(m.frameCount, 1)
	md.Bounds = meta.Both(m.bounds)
	cr.SetMetaData(md)
	return true
}

func (m *ScatterplotMatrix) render(c call.Call) bool {
	cr, ok := call.As[*view.CallRender3D](c)
	if !ok {
		return false
	}
	if !m.validate(cr, false) {
		return false
	}

	var stats view.DrawStats
	plots := len(m.plots)
	ticks := m.axisTicks.Value()
	switch m.axisMode.Value() {
	case AxisMinimalistic:
		stats.Lines += plots * 2 * (1 + ticks)
	case AxisScientific:
		stats.Lines += plots * 2 * (1 + ticks)
		stats.Labels += len(m.columns) + plots*2*ticks
	}

	rows := m.table.Rows
	switch m.geometryType.Value() {
	case GeometryPoint:
		stats.Points += rows * plots
	case GeometryLine:
		stats.Lines += max(rows-1, 0) * plots
	case GeometryTriangulation:
		if !m.trianglesValid {
			m.triangulate()
		}
		stats.Triangles += m.triangles
	case GeometryText:
		m.textValid = true
		stats.Labels += rows * plots
	}
	stats.Batches = 1

	if !m.screenValid {
		m.screenValid = true
		m.screenRebuild++
	}
	cr.Draw(stats)
	return true
}

// triangulate fans the points of every plot. Smoothing iterations move
// vertices only, so the triangle count does not depend on them.
func (m *ScatterplotMatrix) triangulate() {
	m.triangles = max(m.table.Rows-2, 0) * len(m.plots)
	m.trianglesValid = true
	m.Logger().Debug("Triangulation rebuilt.", "triangles", m.triangles, "smoothness", m.triangulationSmoothness.Value())
}
