package mesh

import (
	"errors"
	"fmt"
)

// Semantic names the meaning of a vertex attribute.
type Semantic int

const (
	Position Semantic = iota
	Normal
	Color
	TexCoord
)

func (s Semantic) String() string {
	switch s {
	case Position:
		return "position"
	case Normal:
		return "normal"
	case Color:
		return "color"
	case TexCoord:
		return "texcoord"
	}
	return fmt.Sprintf("semantic(%d)", int(s))
}

// Attribute is one non-interleaved vertex attribute.
type Attribute struct {
	Semantic   Semantic
	Components int
	Data       []float32
}

// Count returns the number of vertices the attribute describes.
func (a Attribute) Count() int {
	if a.Components <= 0 {
		return 0
	}
	return len(a.Data) / a.Components
}

// Mesh is an indexed triangle mesh with separate attribute arrays.
type Mesh struct {
	Attributes []Attribute
	Indices    []uint32
}

// VertexCount returns the vertex count of the first attribute.
func (m Mesh) VertexCount() int {
	if len(m.Attributes) == 0 {
		return 0
	}
	return m.Attributes[0].Count()
}

func (m Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Validate checks that every attribute has the same vertex count and every
// index is in range.
func (m Mesh) Validate() error {
	if len(m.Attributes) == 0 {
		return errors.New("mesh has no attributes")
	}
	n := m.VertexCount()
	for _, a := range m.Attributes {
		if a.Components <= 0 || len(a.Data)%a.Components != 0 {
			return fmt.Errorf("attribute %s: %d values do not split into %d components", a.Semantic, len(a.Data), a.Components)
		}
		if a.Count() != n {
			return fmt.Errorf("attribute %s: %d vertices, expected %d", a.Semantic, a.Count(), n)
		}
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%d indices do not form triangles", len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("index %d out of range (%d vertices)", idx, n)
		}
	}
	return nil
}

// MeshCollection is the payload of CallMesh.
type MeshCollection struct {
	meshes []Mesh
}

func NewMeshCollection() *MeshCollection { return &MeshCollection{} }

func (c *MeshCollection) Add(m Mesh) { c.meshes = append(c.meshes, m) }

func (c *MeshCollection) Meshes() []Mesh { return c.meshes }

func (c *MeshCollection) Clear() { c.meshes = c.meshes[:0] }

// LayoutAttribute places one attribute inside an interleaved vertex.
type LayoutAttribute struct {
	Semantic   Semantic
	Components int
	// Offset is counted in float32 values.
	Offset int
}

// VertexLayout describes an interleaved vertex.
type VertexLayout struct {
	Stride     int
	Attributes []LayoutAttribute
}

// GPUMesh is an uploaded mesh: one interleaved vertex buffer plus indices.
type GPUMesh struct {
	Layout   VertexLayout
	Vertices []float32
	Indices  []uint32
}

func (m *GPUMesh) VertexCount() int {
	if m.Layout.Stride == 0 {
		return 0
	}
	return len(m.Vertices) / m.Layout.Stride
}

func (m *GPUMesh) TriangleCount() int { return len(m.Indices) / 3 }

// GPUMeshCollection is the payload of CallGPUMesh. Several GPUMeshes
// modules may add to one collection; each removes only what it added.
type GPUMeshCollection struct {
	meshes     map[int]*GPUMesh
	next       int
	generation uint64
}

func NewGPUMeshCollection() *GPUMeshCollection {
	return &GPUMeshCollection{meshes: make(map[int]*GPUMesh)}
}

// Upload interleaves m into a new GPU mesh and returns its index.
func (c *GPUMeshCollection) Upload(m Mesh) (int, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	layout := VertexLayout{}
	for _, a := range m.Attributes {
		layout.Attributes = append(layout.Attributes, LayoutAttribute{Semantic: a.Semantic, Components: a.Components, Offset: layout.Stride})
		layout.Stride += a.Components
	}
	n := m.VertexCount()
	vertices := make([]float32, 0, n*layout.Stride)
	for v := 0; v < n; v++ {
		for _, a := range m.Attributes {
			vertices = append(vertices, a.Data[v*a.Components:(v+1)*a.Components]...)
		}
	}
	idx := c.next
	c.next++
	c.meshes[idx] = &GPUMesh{Layout: layout, Vertices: vertices, Indices: append([]uint32(nil), m.Indices...)}
	return idx, nil
}

// Delete removes the mesh at idx.
func (c *GPUMeshCollection) Delete(idx int) { delete(c.meshes, idx) }

// Reset drops every mesh and starts a new generation. Indices are never
// reused, so deleting an index from an earlier generation is a no-op.
func (c *GPUMeshCollection) Reset() {
	clear(c.meshes)
	c.generation++
}

// Generation counts the resets of the collection.
func (c *GPUMeshCollection) Generation() uint64 { return c.generation }

// Mesh looks up an uploaded mesh.
func (c *GPUMeshCollection) Mesh(idx int) (*GPUMesh, bool) {
	m, ok := c.meshes[idx]
	return m, ok
}

// Len returns the number of uploaded meshes.
func (c *GPUMeshCollection) Len() int { return len(c.meshes) }

// Each visits the meshes in upload order.
func (c *GPUMeshCollection) Each(fn func(idx int, m *GPUMesh)) {
	for i := 0; i < c.next; i++ {
		if m, ok := c.meshes[i]; ok {
			fn(i, m)
		}
	}
}
