// Package mesh provides the mesh call classes and the modules that move
// triangle meshes from a producer to the view: GPUMeshes packs CallMesh
// data into interleaved vertex batches, MeshRenderer draws those batches.
//
//	SDFMeshSource --CallMesh--> GPUMeshes --CallGPUMesh--> MeshRenderer --CallRender3D--> View3D
//	                               ^
//	                               +-- chainedGPUMeshes (optional secondary)
package mesh
