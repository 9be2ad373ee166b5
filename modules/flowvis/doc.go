// Package flowvis computes the implicit topology of 2D vector fields.
//
// ImplicitTopology seeds one particle per grid vertex, advects it forward
// and backward through the field on a background goroutine and labels it
// with the convergence structure it ends up at. Intermediate results are
// handed to the frame goroutine one snapshot at a time and published as a
// triangle mesh (CallTriangleMesh) plus named scalar sets (CallMeshData).
// ResultFile persists finished results with msgpack; TriangleMeshRenderer
// draws the mesh for a View3D.
package flowvis
