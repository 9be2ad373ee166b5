package testutil

// MeshProjectHCL is a complete rendering chain: a view drawing a sphere
// through the GPU mesh stage.
const MeshProjectHCL = `
view "View3D" "::inst::view" {
  param "anim::play" { value = false }
}

module "MeshRenderer" "::inst::renderer" {}
module "GPUMeshes" "::inst::gpu" {}

module "SDFMeshSource" "::inst::sphere" {
  shape      = "sphere"
  resolution = 8
  frames     = 2
}

call "CallRender3D" {
  from = "::inst::view::rendering"
  to   = "::inst::renderer::rendering"
}

call "CallGPUMesh" {
  from = "::inst::renderer::gpuMeshes"
  to   = "::inst::gpu::gpuMeshes"
}

call "CallMesh" {
  from = "::inst::gpu::meshes"
  to   = "::inst::sphere::mesh"
}
`

// MeshProjectLisp declares the same chain as MeshProjectHCL in script form.
const MeshProjectLisp = `
(mmCreateView "inst" "View3D" "view")
(mmCreateModule "MeshRenderer" "::inst::renderer")
(mmCreateModule "GPUMeshes" "::inst::gpu")
(mmCreateModule "SDFMeshSource" "::inst::sphere")
(mmCreateCall "CallRender3D" "::inst::view::rendering" "::inst::renderer::rendering")
(mmCreateCall "CallGPUMesh" "::inst::renderer::gpuMeshes" "::inst::gpu::gpuMeshes")
(mmCreateCall "CallMesh" "::inst::gpu::meshes" "::inst::sphere::mesh")
(mmSetParamValue "::inst::sphere::resolution" 8)
`

// ScatterplotProjectHCL renders a synthesized table as a scatterplot
// matrix.
const ScatterplotProjectHCL = `
view "View3D" "::inst::view" {}

module "ScatterplotMatrix" "::inst::splom" {
  geometryType = "point"
}

module "TableSource" "::inst::table" {
  rows    = 50
  columns = 3
}

call "CallRender3D" {
  from = "::inst::view::rendering"
  to   = "::inst::splom::rendering"
}

call "CallTable" {
  from = "::inst::splom::ftIn"
  to   = "::inst::table::table"
}
`
