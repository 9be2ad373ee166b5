package flowvis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrMalformedInput marks vector field and convergence structure files
// that cannot be used.
var ErrMalformedInput = errors.New("malformed input")

// maxGridVertices bounds the allocation a header may request.
const maxGridVertices = 1 << 26

// Convergence structure record types.
const (
	StructurePoint uint32 = 0
	StructureLine  uint32 = 1
)

// Axis is the sampling of one grid axis.
type Axis struct {
	Count uint32
	Min   float32
	Max   float32
}

// Step returns the distance between neighboring samples.
func (a Axis) Step() float32 { return (a.Max - a.Min) / float32(a.Count-1) }

// FieldHeader is the fixed-size prefix of a vector field file.
type FieldHeader struct {
	Dimension  uint32
	Components uint32
	X, Y       Axis
}

// Domain returns x_min, x_max, y_min, y_max.
func (h FieldHeader) Domain() [4]float32 { return [4]float32{h.X.Min, h.X.Max, h.Y.Min, h.Y.Max} }

// Resolution returns the vertex counts along x and y.
func (h FieldHeader) Resolution() [2]int { return [2]int{int(h.X.Count), int(h.Y.Count)} }

// VectorField is a 2D vector field sampled on a regular grid. Vectors are
// stored row by row as (x, y) pairs.
type VectorField struct {
	Header  FieldHeader
	Vectors []float32
}

// ReadFieldHeader reads and validates the header. The dimension and the
// component count are checked before anything else is read.
func ReadFieldHeader(r io.Reader) (FieldHeader, error) {
	var h FieldHeader
	if err := binary.Read(r, binary.LittleEndian, &h.Dimension); err != nil {
		return h, fmt.Errorf("%w: reading dimension: %w", ErrMalformedInput, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &h.Components); err != nil {
		return h, fmt.Errorf("%w: reading component count: %w", ErrMalformedInput, err)
	}
	if h.Dimension != 2 {
		return h, fmt.Errorf("%w: vector field must have exactly two dimensions, got %d", ErrMalformedInput, h.Dimension)
	}
	if h.Components != 2 {
		return h, fmt.Errorf("%w: vectors must have exactly two components, got %d", ErrMalformedInput, h.Components)
	}
	for _, axis := range []struct {
		name string
		a    *Axis
	}{{"x", &h.X}, {"y", &h.Y}} {
		if err := binary.Read(r, binary.LittleEndian, axis.a); err != nil {
			return h, fmt.Errorf("%w: reading %s axis: %w", ErrMalformedInput, axis.name, err)
		}
		if axis.a.Count < 2 {
			return h, fmt.Errorf("%w: %s axis needs at least two samples, got %d", ErrMalformedInput, axis.name, axis.a.Count)
		}
		if !(axis.a.Max > axis.a.Min) {
			return h, fmt.Errorf("%w: %s axis range [%g, %g] is empty", ErrMalformedInput, axis.name, axis.a.Min, axis.a.Max)
		}
	}
	if uint64(h.X.Count)*uint64(h.Y.Count) > maxGridVertices {
		return h, fmt.Errorf("%w: grid of %dx%d vertices is too large", ErrMalformedInput, h.X.Count, h.Y.Count)
	}
	return h, nil
}

// ReadVectorField reads a complete vector field.
func ReadVectorField(r io.Reader) (*VectorField, error) {
	h, err := ReadFieldHeader(r)
	if err != nil {
		return nil, err
	}
	vf := &VectorField{Header: h, Vectors: make([]float32, 2*int(h.X.Count)*int(h.Y.Count))}
	if err := binary.Read(r, binary.LittleEndian, vf.Vectors); err != nil {
		return nil, fmt.Errorf("%w: reading %d vectors: %w", ErrMalformedInput, len(vf.Vectors)/2, err)
	}
	return vf, nil
}

// WriteVectorField writes vf in the format ReadVectorField reads.
func WriteVectorField(w io.Writer, vf *VectorField) error {
	h := vf.Header
	for _, v := range []any{h.Dimension, h.Components, h.X, h.Y, vf.Vectors} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

// Positions returns the grid vertex positions as (x, y) pairs.
func (vf *VectorField) Positions() []float32 {
	h := vf.Header
	out := make([]float32, 0, 2*int(h.X.Count)*int(h.Y.Count))
	for y := uint32(0); y < h.Y.Count; y++ {
		for x := uint32(0); x < h.X.Count; x++ {
			out = append(out, h.X.Min+float32(x)*h.X.Step(), h.Y.Min+float32(y)*h.Y.Step())
		}
	}
	return out
}

// ConvergenceStructures are the attracting points and lines particles are
// labeled with. IDs are the record indices in the file.
type ConvergenceStructures struct {
	Points   []float32
	PointIDs []int
	Lines    []float32
	LineIDs  []int
}

// Len returns the number of structures.
func (c *ConvergenceStructures) Len() int { return len(c.PointIDs) + len(c.LineIDs) }

// ReadConvergenceStructures reads a convergence structure file.
func ReadConvergenceStructures(r io.Reader) (*ConvergenceStructures, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading structure count: %w", ErrMalformedInput, err)
	}
	cs := &ConvergenceStructures{}
	for i := 0; i < int(count); i++ {
		var typ uint32
		if err := binary.Read(r, binary.LittleEndian, &typ); err != nil {
			return nil, fmt.Errorf("%w: reading type of structure %d: %w", ErrMalformedInput, i, err)
		}
		var n int
		switch typ {
		case StructurePoint:
			n = 2
		case StructureLine:
			n = 4
		default:
			return nil, fmt.Errorf("%w: unknown convergence structure type %d at record %d", ErrMalformedInput, typ, i)
		}
		vals := make([]float32, n)
		if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
			return nil, fmt.Errorf("%w: reading structure %d: %w", ErrMalformedInput, i, err)
		}
		if typ == StructurePoint {
			cs.Points = append(cs.Points, vals...)
			cs.PointIDs = append(cs.PointIDs, i)
		} else {
			cs.Lines = append(cs.Lines, vals...)
			cs.LineIDs = append(cs.LineIDs, i)
		}
	}
	return cs, nil
}

// StructureRecord is one entry of a convergence structure file.
type StructureRecord struct {
	Type   uint32
	Coords []float32
}

// WriteConvergenceStructures writes records in file order.
func WriteConvergenceStructures(w io.Writer, records []StructureRecord) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(records))); err != nil {
		return err
	}
	for _, rec := range records {
		if err := binary.Write(w, binary.LittleEndian, rec.Type); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, rec.Coords); err != nil {
			return err
		}
	}
	return nil
}

// Input is everything a computation is initialized from.
type Input struct {
	Field      *VectorField
	Structures *ConvergenceStructures
}

// LoadInput reads both input files.
func LoadInput(fieldPath, structuresPath string) (*Input, error) {
	ff, err := os.Open(fieldPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open input vector field file '%s': %w", fieldPath, err)
	}
	defer ff.Close()
	sf, err := os.Open(structuresPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open input convergence structures file '%s': %w", structuresPath, err)
	}
	defer sf.Close()

	field, err := ReadVectorField(ff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fieldPath, err)
	}
	structures, err := ReadConvergenceStructures(sf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", structuresPath, err)
	}
	return &Input{Field: field, Structures: structures}, nil
}

// ReadFieldHeaderFile reads only the header of a vector field file.
func ReadFieldHeaderFile(path string) (FieldHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return FieldHeader{}, fmt.Errorf("unable to open input vector field file '%s': %w", path, err)
	}
	defer f.Close()
	h, err := ReadFieldHeader(f)
	if err != nil {
		return h, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}
