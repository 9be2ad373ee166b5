package flowvis

import (
	"context"
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/google/uuid"
)

// Termination codes of a particle.
const (
	TerminationLeft      float32 = -1
	TerminationRunning   float32 = 0
	TerminationConverged float32 = 1
	TerminationStepLimit float32 = 2
)

// unboundedStepLimit caps runs whose num_integration_steps is 0.
const unboundedStepLimit = 100000

// Fixed are the settings a computation is initialized with. They cannot
// change for the lifetime of the computation.
type Fixed struct {
	Timestep      float32 `msgpack:"timestep"`
	MaxIntegError float32 `msgpack:"max_integration_error"`
}

// Settings are the per-run settings.
type Settings struct {
	IntegrationSteps      int     `msgpack:"num_integration_steps"`
	ParticlesPerBatch     int     `msgpack:"num_particles_per_batch"`
	StepsPerBatch         int     `msgpack:"num_integration_steps_per_batch"`
	RefinementThreshold   float32 `msgpack:"refinement_threshold"`
	RefineAtLabels        bool    `msgpack:"refine_at_labels"`
	DistanceDiffThreshold float32 `msgpack:"distance_difference_threshold"`
}

func (s Settings) validate() error {
	var errs []error
	if s.IntegrationSteps < 0 {
		errs = append(errs, fmt.Errorf("num_integration_steps must not be negative, got %d", s.IntegrationSteps))
	}
	if s.ParticlesPerBatch <= 0 {
		errs = append(errs, fmt.Errorf("num_particles_per_batch must be positive, got %d", s.ParticlesPerBatch))
	}
	if s.StepsPerBatch <= 0 {
		errs = append(errs, fmt.Errorf("num_integration_steps_per_batch must be positive, got %d", s.StepsPerBatch))
	}
	if s.DistanceDiffThreshold < 0 {
		errs = append(errs, fmt.Errorf("distance_difference_threshold must not be negative, got %g", s.DistanceDiffThreshold))
	}
	return errors.Join(errs...)
}

func (s Settings) stepLimit() int {
	if s.IntegrationSteps == 0 {
		return unboundedStepLimit
	}
	return s.IntegrationSteps
}

// Result is the state of a computation after a batch. Slices are owned by
// the receiver.
type Result struct {
	RunID      string     `msgpack:"run_id"`
	Resolution [2]int     `msgpack:"resolution"`
	Domain     [4]float32 `msgpack:"domain"`
	Vertices   []float32  `msgpack:"vertices"`
	Indices    []uint32   `msgpack:"indices"`

	LabelsForward        []float32 `msgpack:"labels_forward"`
	DistancesForward     []float32 `msgpack:"distances_forward"`
	TerminationsForward  []float32 `msgpack:"terminations_forward"`
	LabelsBackward       []float32 `msgpack:"labels_backward"`
	DistancesBackward    []float32 `msgpack:"distances_backward"`
	TerminationsBackward []float32 `msgpack:"terminations_backward"`

	Steps    int      `msgpack:"steps"`
	Settings Settings `msgpack:"settings"`
	Fixed    Fixed    `msgpack:"fixed"`
	Finished bool     `msgpack:"finished"`
	// Err is set when the run failed; the result is then final.
	Err error `msgpack:"-"`
}

// particles is the advection state of one direction.
type particles struct {
	pos          []float32
	labels       []float32
	distances    []float32
	terminations []float32
}

func newParticles(seeds []float32) *particles {
	n := len(seeds) / 2
	p := &particles{
		pos:          append([]float32(nil), seeds...),
		labels:       make([]float32, n),
		distances:    make([]float32, n),
		terminations: make([]float32, n),
	}
	for i := range p.labels {
		p.labels[i] = -1
	}
	return p
}

// Computation advects the particles of one grid. Start runs it on a
// worker goroutine.
type Computation struct {
	input    *Input
	fixed    Fixed
	seeds    []float32
	vertices []float32
	indices  []uint32
}

// NewComputation prepares a computation on input.
func NewComputation(input *Input, fixed Fixed) (*Computation, error) {
	if input == nil || input.Field == nil || input.Structures == nil {
		return nil, fmt.Errorf("%w: missing input", ErrMalformedInput)
	}
	if !(fixed.Timestep > 0) {
		return nil, fmt.Errorf("%w: integration_timestep must be positive, got %g", ErrMalformedInput, fixed.Timestep)
	}
	c := &Computation{input: input, fixed: fixed, seeds: input.Field.Positions()}
	c.vertices, c.indices = triangulateGrid(c.seeds, input.Field.Header.Resolution())
	return c, nil
}

// Input returns the input the computation was created from.
func (c *Computation) Input() *Input { return c.input }

// Fixed returns the fixed settings.
func (c *Computation) Fixed() Fixed { return c.fixed }

// Run is a computation executing on a worker goroutine.
type Run struct {
	ID      uuid.UUID
	results chan Result
	cancel  context.CancelFunc
	done    chan struct{}
}

// Results is the single-slot future of the run: at most one snapshot is
// pending, the worker blocks until it is taken.
func (r *Run) Results() <-chan Result { return r.results }

// Terminate cancels the run and waits until the worker observed it, which
// happens within cancelCheckSteps integration steps.
func (r *Run) Terminate() {
	r.cancel()
	<-r.done
}

// Start launches a run with settings s.
func (c *Computation) Start(ctx context.Context, s Settings) (*Run, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	r := &Run{
		ID:      uuid.New(),
		results: make(chan Result, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go func() {
		defer close(r.done)
		c.work(ctx, r, s)
	}()
	return r, nil
}

func (c *Computation) work(ctx context.Context, r *Run, s Settings) {
	fwd := newParticles(c.seeds)
	bwd := newParticles(c.seeds)
	limit := s.stepLimit()
	steps := 0

	for {
		n := min(s.StepsPerBatch, limit-steps)
		for lo := 0; lo < len(fwd.labels); lo += s.ParticlesPerBatch {
			if ctx.Err() != nil {
				return
			}
			hi := min(lo+s.ParticlesPerBatch, len(fwd.labels))
			err := c.advect(ctx, fwd, lo, hi, n, 1, s)
			if err == nil {
				err = c.advect(ctx, bwd, lo, hi, n, -1, s)
			}
			if err != nil {
				if ctx.Err() == nil {
					c.emit(ctx, r, Result{Err: err, Finished: true})
				}
				return
			}
		}
		steps += n

		finished := steps >= limit || (!fwd.active() && !bwd.active())
		if finished {
			fwd.stopAll()
			bwd.stopAll()
		}
		if !c.emit(ctx, r, c.snapshot(r.ID, fwd, bwd, steps, s, finished)) || finished {
			return
		}
	}
}

func (c *Computation) emit(ctx context.Context, r *Run, res Result) bool {
	select {
	case r.results <- res:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Computation) snapshot(id uuid.UUID, fwd, bwd *particles, steps int, s Settings, finished bool) Result {
	h := c.input.Field.Header
	return Result{
		RunID:                id.String(),
		Resolution:           h.Resolution(),
		Domain:               h.Domain(),
		Vertices:             c.vertices,
		Indices:              c.indices,
		LabelsForward:        append([]float32(nil), fwd.labels...),
		DistancesForward:     append([]float32(nil), fwd.distances...),
		TerminationsForward:  append([]float32(nil), fwd.terminations...),
		LabelsBackward:       append([]float32(nil), bwd.labels...),
		DistancesBackward:    append([]float32(nil), bwd.distances...),
		TerminationsBackward: append([]float32(nil), bwd.terminations...),
		Steps:                steps,
		Settings:             s,
		Fixed:                c.fixed,
		Finished:             finished,
	}
}

func (p *particles) active() bool {
	for _, t := range p.terminations {
		if t == TerminationRunning {
			return true
		}
	}
	return false
}

// stopAll marks every particle still moving as having hit the step limit.
func (p *particles) stopAll() {
	for i, t := range p.terminations {
		if t == TerminationRunning {
			p.terminations[i] = TerminationStepLimit
		}
	}
}

// cancelCheckSteps is how many integration steps advect takes between
// looks at its context.
const cancelCheckSteps = 4096

// advect moves particles [lo, hi) by up to n Euler steps in direction dir.
// It returns ctx.Err() when ctx is cancelled midway.
func (c *Computation) advect(ctx context.Context, p *particles, lo, hi, n int, dir float32, s Settings) error {
	dt := dir * c.fixed.Timestep
	taken := 0
	for i := lo; i < hi; i++ {
		if p.terminations[i] != TerminationRunning {
			continue
		}
		x, y := p.pos[2*i], p.pos[2*i+1]
		for step := 0; step < n; step++ {
			if taken++; taken%cancelCheckSteps == 0 && ctx.Err() != nil {
				return ctx.Err()
			}
			vx, vy, inside := c.sample(x, y)
			if !inside {
				p.terminations[i] = TerminationLeft
				break
			}
			if math32.IsNaN(vx) || math32.IsNaN(vy) || math32.IsInf(vx, 0) || math32.IsInf(vy, 0) {
				return fmt.Errorf("non-finite vector at (%g, %g)", x, y)
			}
			x += dt * vx
			y += dt * vy

			id, dist := c.nearest(x, y)
			p.distances[i] = dist
			if id >= 0 && dist <= s.DistanceDiffThreshold {
				p.labels[i] = float32(id)
				p.terminations[i] = TerminationConverged
				break
			}
			if math32.Abs(dt)*math32.Sqrt(vx*vx+vy*vy) < c.fixed.MaxIntegError {
				// Stagnation point that is no convergence structure.
				p.terminations[i] = TerminationStepLimit
				break
			}
		}
		p.pos[2*i], p.pos[2*i+1] = x, y
	}
	return nil
}

// sample interpolates the field bilinearly. It reports false outside the
// domain.
func (c *Computation) sample(x, y float32) (vx, vy float32, inside bool) {
	h := c.input.Field.Header
	if x < h.X.Min || x > h.X.Max || y < h.Y.Min || y > h.Y.Max {
		return 0, 0, false
	}
	fx := (x - h.X.Min) / h.X.Step()
	fy := (y - h.Y.Min) / h.Y.Step()
	ix := min(int(math32.Floor(fx)), int(h.X.Count)-2)
	iy := min(int(math32.Floor(fy)), int(h.Y.Count)-2)
	tx := fx - float32(ix)
	ty := fy - float32(iy)

	at := func(gx, gy int) (float32, float32) {
		k := 2 * (gy*int(h.X.Count) + gx)
		return c.input.Field.Vectors[k], c.input.Field.Vectors[k+1]
	}
	ax, ay := at(ix, iy)
	bx, by := at(ix+1, iy)
	cx, cy := at(ix, iy+1)
	dx, dy := at(ix+1, iy+1)

	vx = (1-ty)*((1-tx)*ax+tx*bx) + ty*((1-tx)*cx+tx*dx)
	vy = (1-ty)*((1-tx)*ay+tx*by) + ty*((1-tx)*cy+tx*dy)
	return vx, vy, true
}

// nearest returns the ID of the closest convergence structure and the
// distance to it, or -1 and +Inf without structures.
func (c *Computation) nearest(x, y float32) (int, float32) {
	cs := c.input.Structures
	best, bestDist := -1, math32.Inf(1)
	for i, id := range cs.PointIDs {
		dx, dy := x-cs.Points[2*i], y-cs.Points[2*i+1]
		if d := math32.Sqrt(dx*dx + dy*dy); d < bestDist {
			best, bestDist = id, d
		}
	}
	for i, id := range cs.LineIDs {
		l := cs.Lines[4*i : 4*i+4]
		if d := segmentDistance(x, y, l[0], l[1], l[2], l[3]); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, bestDist
}

func segmentDistance(px, py, ax, ay, bx, by float32) float32 {
	ex, ey := bx-ax, by-ay
	lenSq := ex*ex + ey*ey
	t := float32(0)
	if lenSq > 0 {
		t = min(max(((px-ax)*ex+(py-ay)*ey)/lenSq, 0), 1)
	}
	dx, dy := px-(ax+t*ex), py-(ay+t*ey)
	return math32.Sqrt(dx*dx + dy*dy)
}

// triangulateGrid splits every grid cell into two triangles. Vertices get
// z = 0.
func triangulateGrid(positions []float32, res [2]int) ([]float32, []uint32) {
	nx, ny := res[0], res[1]
	vertices := make([]float32, 0, nx*ny*3)
	for i := 0; i < nx*ny; i++ {
		vertices = append(vertices, positions[2*i], positions[2*i+1], 0)
	}
	indices := make([]uint32, 0, (nx-1)*(ny-1)*6)
	for y := 0; y < ny-1; y++ {
		for x := 0; x < nx-1; x++ {
			a := uint32(y*nx + x)
			b, c, d := a+1, a+uint32(nx), a+uint32(nx)+1
			indices = append(indices, a, b, d, a, d, c)
		}
	}
	return vertices, indices
}

// GradientMagnitudes computes |grad f| of a scalar field on the grid with
// central differences inside and one-sided differences at the borders.
func GradientMagnitudes(f []float32, res [2]int) []float32 {
	nx, ny := res[0], res[1]
	out := make([]float32, len(f))
	if nx < 2 || ny < 2 || len(f) != nx*ny {
		return out
	}
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			i := x + y*nx
			var gx, gy float32
			switch x {
			case 0:
				gx = f[i+1] - f[i]
			case nx - 1:
				gx = f[i] - f[i-1]
			default:
				gx = (f[i+1] - f[i-1]) / 2
			}
			switch y {
			case 0:
				gy = f[i+nx] - f[i]
			case ny - 1:
				gy = f[i] - f[i-nx]
			default:
				gy = (f[i+nx] - f[i-nx]) / 2
			}
			out[i] = math32.Sqrt(gx*gx + gy*gy)
		}
	}
	return out
}
