package flowvis

import (
	"context"
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/chain"
	"github.com/specialistvlad/callgrid/internal/meta"
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/param"
)

// State is the lifecycle of the topology computation.
type State int

const (
	Idle State = iota
	Running
	Finished
	// Failed is Finished with an error. The computation has been dropped
	// and every parameter is writable again.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// defaultPollTimeout is how long a frame waits for a pending snapshot.
const defaultPollTimeout = time.Millisecond

// scalarRange is the fixed_range/range_min/range_max triple of one data
// set family.
type scalarRange struct {
	fixed *param.Bool
	lo    *param.Float
	hi    *param.Float
}

func addRange(b *module.Base, prefix string, fixed bool, lo, hi float32) scalarRange {
	return scalarRange{
		fixed: module.AddParam(b, prefix+"_fixed_range", param.NewBool(fixed)),
		lo:    module.AddParam(b, prefix+"_range_min", param.NewFloat(lo)),
		hi:    module.AddParam(b, prefix+"_range_max", param.NewFloat(hi)),
	}
}

func (r scalarRange) params() []param.Param { return []param.Param{r.fixed, r.lo, r.hi} }

// publish stores the forward and backward sets and writes the observed
// range back into the range parameters.
func (r scalarRange) publish(data *MeshData, fwdName string, fwd []float32, bwdName string, bwd []float32) {
	lo1, hi1 := r.set(data, fwdName, fwd)
	lo2, hi2 := r.set(data, bwdName, bwd)
	r.lo.SetValueQuiet(min(lo1, lo2))
	r.hi.SetValueQuiet(max(hi1, hi2))
}

func (r scalarRange) set(data *MeshData, name string, values []float32) (float32, float32) {
	ds := &DataSet{Data: values}
	if r.fixed.Value() {
		ds.Min, ds.Max = r.lo.Value(), r.hi.Value()
	} else {
		ds.Min, ds.Max = minMax(values)
	}
	data.Set(name, ds)
	return ds.Min, ds.Max
}

func (r scalarRange) syncReadOnly() {
	r.lo.SetGUIReadOnly(!r.fixed.Value())
	r.hi.SetGUIReadOnly(!r.fixed.Value())
}

func minMax(values []float32) (float32, float32) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := math32.Inf(1), math32.Inf(-1)
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// ImplicitTopology runs the topology computation and publishes its latest
// result.
type ImplicitTopology struct {
	module.Base

	triangles    *module.CalleeSlot
	meshData     *module.CalleeSlot
	resultReader *module.CallerSlot
	resultWriter *module.CallerSlot

	fieldPath      *param.FilePath
	structuresPath *param.FilePath
	timestep       *param.Float
	maxError       *param.Float

	steps          *param.Int
	perBatch       *param.Int
	stepsPerBatch  *param.Int
	refinement     *param.Float
	refineAtLabels *param.Bool
	distDiff       *param.Float

	start, stop, reset, load, save *param.Button

	labels, distances, terminations, gradients scalarRange

	fixedParams    param.Group
	variableParams param.Group
	rangeParams    param.Group

	runCtx      context.Context
	cancelRuns  context.CancelFunc
	pollTimeout time.Duration

	state    State
	err      error
	comp     *Computation
	run      *Run
	current  *Result
	previous *Result

	meshChanged bool
	dataChanged bool
	meshVersion chain.Version
	dataVersion chain.Version
	mesh        *TriangleMesh
	data        *MeshData
	gradFwd     []float32
	gradBwd     []float32

	bounds    meta.Cuboid
	headerErr error
}

func NewImplicitTopology() *ImplicitTopology {
	m := &ImplicitTopology{pollTimeout: defaultPollTimeout}

	m.triangles = m.MakeCalleeSlot("triangles", "Triangle mesh output")
	m.triangles.SetCallback(CallTriangleMeshDescription.ClassName, "GetData", m.getTriangleData)
	m.triangles.SetCallback(CallTriangleMeshDescription.ClassName, "GetExtent", m.getTriangleExtent)
	m.meshData = m.MakeCalleeSlot("mesh_data", "Mesh data output")
	m.meshData.SetCallback(CallMeshDataDescription.ClassName, "GetData", m.getMeshData)
	m.meshData.SetCallback(CallMeshDataDescription.ClassName, "GetExtent", m.getMeshDataExtent)
	m.resultReader = m.MakeCallerSlot("result_reader", "Results input", CallResultReaderDescription.ClassName)
	m.resultWriter = m.MakeCallerSlot("result_writer", "Results output", CallResultWriterDescription.ClassName)

	m.fieldPath = module.AddParam(&m.Base, "vector_field_path", param.NewFilePath(""))
	m.structuresPath = module.AddParam(&m.Base, "convergence_structures_path", param.NewFilePath(""))
	m.timestep = module.AddParam(&m.Base, "integration_timestep", param.NewFloat(0.01))
	m.maxError = module.AddParam(&m.Base, "max_integration_error", param.NewFloat(0.000001))

	m.steps = module.AddParam(&m.Base, "num_integration_steps", param.NewIntRange(0, 0, 1<<30))
	m.perBatch = module.AddParam(&m.Base, "num_particles_per_batch", param.NewIntRange(10000, 1, 1<<30))
	m.stepsPerBatch = module.AddParam(&m.Base, "num_integration_steps_per_batch", param.NewIntRange(10000, 1, 1<<30))
	m.refinement = module.AddParam(&m.Base, "refinement_threshold", param.NewFloat(0.00024))
	m.refineAtLabels = module.AddParam(&m.Base, "refine_at_labels", param.NewBool(true))
	m.distDiff = module.AddParam(&m.Base, "distance_difference_threshold", param.NewFloat(0.00025))

	m.start = module.AddParam(&m.Base, "start", param.NewButton())
	m.stop = module.AddParam(&m.Base, "stop", param.NewButton())
	m.reset = module.AddParam(&m.Base, "reset", param.NewButton())
	m.load = module.AddParam(&m.Base, "load", param.NewButton())
	m.save = module.AddParam(&m.Base, "save", param.NewButton())

	m.labels = addRange(&m.Base, "label", false, 0, 1)
	m.distances = addRange(&m.Base, "distance", false, 0, 1)
	m.terminations = addRange(&m.Base, "termination", true, -1, 2)
	m.gradients = addRange(&m.Base, "gradient", false, 0, 1)

	m.fixedParams = param.Group{m.fieldPath, m.structuresPath, m.timestep, m.maxError}
	m.variableParams = param.Group{m.steps, m.perBatch, m.stepsPerBatch, m.refinement, m.refineAtLabels, m.distDiff}
	for _, r := range []scalarRange{m.labels, m.distances, m.terminations, m.gradients} {
		m.rangeParams = append(m.rangeParams, r.params()...)
	}

	m.start.OnUpdate(m.startComputation)
	m.stop.OnUpdate(m.stopComputation)
	m.reset.OnUpdate(m.resetComputation)
	m.load.OnUpdate(m.loadComputation)
	m.save.OnUpdate(m.saveComputation)
	return m
}

func (m *ImplicitTopology) Create(ctx context.Context) error {
	m.runCtx, m.cancelRuns = context.WithCancel(context.WithoutCancel(ctx))
	return nil
}

func (m *ImplicitTopology) Release(ctx context.Context) {
	m.terminateRun()
	if m.cancelRuns != nil {
		m.cancelRuns()
	}
}

// State returns the computation state.
func (m *ImplicitTopology) State() State { return m.state }

// Err returns the error of the last failed run.
func (m *ImplicitTopology) Err() error { return m.err }

// Result returns the latest published result, or nil.
func (m *ImplicitTopology) Result() *Result { return m.current }

func (m *ImplicitTopology) runContext() context.Context {
	if m.runCtx == nil {
		return context.Background()
	}
	return m.runCtx
}

func (m *ImplicitTopology) fixed() Fixed {
	return Fixed{Timestep: m.timestep.Value(), MaxIntegError: m.maxError.Value()}
}

func (m *ImplicitTopology) settings() Settings {
	return Settings{
		IntegrationSteps:      m.steps.Value(),
		ParticlesPerBatch:     m.perBatch.Value(),
		StepsPerBatch:         m.stepsPerBatch.Value(),
		RefinementThreshold:   m.refinement.Value(),
		RefineAtLabels:        m.refineAtLabels.Value(),
		DistanceDiffThreshold: m.distDiff.Value(),
	}
}

// initialize loads the input unless a computation already exists. The
// fixed parameters stay locked until reset.
func (m *ImplicitTopology) initialize() error {
	if m.comp != nil {
		return nil
	}
	input, err := LoadInput(m.fieldPath.Value(), m.structuresPath.Value())
	if err != nil {
		return err
	}
	comp, err := NewComputation(input, m.fixed())
	if err != nil {
		return err
	}
	m.comp = comp
	m.fixedParams.SetGUIReadOnly(true)
	return nil
}

func (m *ImplicitTopology) startComputation() {
	if m.state == Running {
		m.Logger().Warn("Computation of topology is already running.")
		return
	}
	if err := m.initialize(); err != nil {
		m.Logger().Error("Cannot initialize computation of topology.", "error", err)
		return
	}
	run, err := m.comp.Start(m.runContext(), m.settings())
	if err != nil {
		m.Logger().Error("Cannot start computation of topology.", "error", err)
		return
	}
	m.run = run
	m.state = Running
	m.err = nil
	m.variableParams.SetGUIReadOnly(true)
	m.Logger().Info("🚀 Computation of topology started.", "run_id", run.ID)
}

func (m *ImplicitTopology) terminateRun() bool {
	if m.run == nil {
		return false
	}
	m.run.Terminate()
	m.run = nil
	return true
}

func (m *ImplicitTopology) stopComputation() {
	if m.terminateRun() && m.state == Running {
		m.Logger().Info("Computation of topology terminated.")
	}
	if m.state == Running {
		m.state = Idle
		if m.previous != nil {
			m.state = Finished
		}
	}
	m.variableParams.SetGUIReadOnly(false)
}

func (m *ImplicitTopology) resetComputation() {
	m.stopComputation()
	m.rollback()
	m.state = Idle
	m.err = nil
}

// rollback drops the computation and every result and unlocks all
// parameters.
func (m *ImplicitTopology) rollback() {
	m.terminateRun()
	m.comp = nil
	m.previous = nil
	if m.current != nil {
		m.current = nil
		m.meshChanged = true
		m.dataChanged = true
	}
	m.fixedParams.SetGUIReadOnly(false)
	m.variableParams.SetGUIReadOnly(false)
}

func (m *ImplicitTopology) fail(err error) {
	m.Logger().Error("Computation of topology failed.", "error", err)
	m.rollback()
	m.state = Failed
	m.err = err
}

// update takes a pending snapshot unless the asking output has not
// consumed the previous one yet.
func (m *ImplicitTopology) update(unconsumed bool) {
	if m.state != Running || m.run == nil || unconsumed {
		return
	}
	timer := time.NewTimer(m.pollTimeout)
	defer timer.Stop()
	select {
	case res := <-m.run.Results():
		m.accept(res)
	case <-timer.C:
	}
}

func (m *ImplicitTopology) accept(res Result) {
	if res.Err != nil {
		m.fail(res.Err)
		return
	}
	m.current = &res
	m.previous = &res
	m.meshChanged = true
	m.dataChanged = true

	if !res.Finished {
		m.Logger().Debug("Computation of topology yielded new results.", "steps", res.Steps)
		return
	}
	m.terminateRun()
	m.state = Finished
	m.variableParams.SetGUIReadOnly(false)
	m.Logger().Info("🏁 Computation of topology ended.", "run_id", res.RunID, "steps", res.Steps)
}

func (m *ImplicitTopology) saveComputation() {
	if m.state == Running {
		m.Logger().Warn("Results can only be saved after the computation has finished.")
		return
	}
	if m.previous == nil {
		m.Logger().Warn("There is no result to write to file.")
		return
	}
	wc, ok := module.CallAs[*CallResultWriter](m.resultWriter)
	if !ok {
		m.Logger().Warn("Cannot write results. Writer module not connected!")
		return
	}
	wc.Result = m.previous
	if !wc.Invoke(0) {
		m.Logger().Error("Writing results of topology computation failed.")
		return
	}
	m.Logger().Info("Previous computation of topology saved to file.")
}

func (m *ImplicitTopology) loadComputation() {
	rc, ok := module.CallAs[*CallResultReader](m.resultReader)
	if !ok {
		m.Logger().Warn("Cannot load previous results. Loader module not connected!")
		return
	}
	rc.Result = nil
	if !rc.Invoke(0) || rc.Result == nil {
		m.Logger().Error("Reading results of topology computation failed.")
		return
	}
	res := *rc.Result

	m.resetComputation()
	if err := m.restore(&res); err != nil {
		m.Logger().Error("Cannot restore previous computation of topology.", "error", err)
		m.rollback()
		return
	}
	m.Logger().Info("Previous computation of topology loaded from file.", "run_id", res.RunID)
}

func (m *ImplicitTopology) restore(res *Result) error {
	m.timestep.SetValueQuiet(res.Fixed.Timestep)
	m.maxError.SetValueQuiet(res.Fixed.MaxIntegError)
	if err := m.initialize(); err != nil {
		return err
	}
	h := m.comp.Input().Field.Header
	n := int(h.X.Count) * int(h.Y.Count)
	if res.Resolution != h.Resolution() {
		return fmt.Errorf("%w: result resolution %v does not match vector field %v", ErrMalformedInput, res.Resolution, h.Resolution())
	}
	for name, set := range map[string][]float32{
		SetLabelsForward: res.LabelsForward, SetLabelsBackward: res.LabelsBackward,
		SetDistancesForward: res.DistancesForward, SetDistancesBackward: res.DistancesBackward,
		SetTerminationsForward: res.TerminationsForward, SetTerminationsBackward: res.TerminationsBackward,
	} {
		if len(set) != n {
			return fmt.Errorf("%w: %s has %d values, expected %d", ErrMalformedInput, name, len(set), n)
		}
	}
	if len(res.Vertices) == 0 {
		res.Vertices, res.Indices = m.comp.vertices, m.comp.indices
	}
	res.Finished = true
	m.current = res
	m.previous = res
	m.meshChanged = true
	m.dataChanged = true
	m.state = Finished
	return nil
}

func (m *ImplicitTopology) getTriangleData(c call.Call) bool {
	tc, ok := call.As[*CallTriangleMesh](c)
	if !ok {
		return false
	}
	m.update(m.meshChanged)

	if m.meshChanged {
		mesh := &TriangleMesh{}
		if m.current != nil {
			mesh.Vertices, mesh.Indices = m.current.Vertices, m.current.Indices
		}
		m.mesh = mesh
		m.meshVersion.Bump()
		m.meshChanged = false
	}
	if m.mesh != nil {
		tc.SetData(m.mesh)
	}
	tc.SetMetaData(m.triangleMeta(tc.MetaData()))
	return true
}

func (m *ImplicitTopology) triangleMeta(md meta.Spatial3D) meta.Spatial3D {
	md.DataHash = m.meshVersion.Hash()
	md.FrameCount = 1
	md.FrameID = 0
	md.Bounds = meta.Both(m.bounds)
	return md
}

// getTriangleExtent reads the vector field header when the path changed
// and publishes the domain rectangle.
func (m *ImplicitTopology) getTriangleExtent(c call.Call) bool {
	tc, ok := call.As[*CallTriangleMesh](c)
	if !ok {
		return false
	}
	if m.fieldPath.IsDirty() {
		m.fieldPath.ResetDirty()
		h, err := ReadFieldHeaderFile(m.fieldPath.Value())
		if err != nil {
			m.Logger().Error("Cannot read vector field header.", "error", err)
			m.headerErr = err
		} else {
			m.headerErr = nil
			m.bounds = meta.NewRect(float64(h.X.Min), float64(h.Y.Min), float64(h.X.Max), float64(h.Y.Max))
		}
	}
	if m.headerErr != nil {
		md := tc.MetaData()
		md.DataHash = 0
		tc.SetMetaData(md)
		return false
	}
	tc.SetMetaData(m.triangleMeta(tc.MetaData()))
	return true
}

func (m *ImplicitTopology) getMeshDataExtent(c call.Call) bool {
	dc, ok := call.As[*CallMeshData](c)
	if !ok {
		return false
	}
	data := dc.Data()
	if data == nil {
		data = NewMeshData()
		dc.SetData(data)
	}
	for _, name := range SetNames {
		data.Declare(name)
	}
	return true
}

func (m *ImplicitTopology) getMeshData(c call.Call) bool {
	dc, ok := call.As[*CallMeshData](c)
	if !ok {
		return false
	}
	if m.current != nil || m.dataChanged || m.state == Running {
		m.refreshMeshData()
	}
	if m.data != nil {
		dc.SetData(m.data)
	}
	dc.SetMetaData(meta.Basic{DataHash: m.dataVersion.Hash()})
	return true
}

// refreshMeshData rebuilds the published data sets when the result or a
// range parameter changed.
func (m *ImplicitTopology) refreshMeshData() {
	m.update(m.dataChanged)

	if m.dataChanged || m.rangeParams.AnyDirty() {
		m.rangeParams.ResetDirty()
		data := NewMeshData()
		if cur := m.current; cur != nil {
			if m.dataChanged {
				m.gradFwd = GradientMagnitudes(cur.DistancesForward, cur.Resolution)
				m.gradBwd = GradientMagnitudes(cur.DistancesBackward, cur.Resolution)
			}
			m.labels.publish(data, SetLabelsForward, cur.LabelsForward, SetLabelsBackward, cur.LabelsBackward)
			m.distances.publish(data, SetDistancesForward, cur.DistancesForward, SetDistancesBackward, cur.DistancesBackward)
			m.terminations.publish(data, SetTerminationsForward, cur.TerminationsForward, SetTerminationsBackward, cur.TerminationsBackward)
			m.gradients.publish(data, SetGradientsForward, m.gradFwd, SetGradientsBackward, m.gradBwd)
		}
		m.data = data
		m.dataVersion.Bump()
		m.dataChanged = false
	}

	for _, r := range []scalarRange{m.labels, m.distances, m.terminations, m.gradients} {
		r.syncReadOnly()
	}
}
