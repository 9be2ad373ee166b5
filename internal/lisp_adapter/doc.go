// Package lisp_adapter provides a config.Loader for Lisp project scripts.
//
// Scripts run in a sandboxed zygomys interpreter that has no file system or
// process access. The builtins record declarations into a config.Project:
//
//	(mmCreateView "inst" "View3D" "view")
//	(mmCreateModule "SDFMeshSource" "::inst::src")
//	(mmCreateCall "CallMesh" "::inst::gpu::meshes" "::inst::src::mesh")
//	(mmSetParamValue "::inst::src::size" 2.5)
//
// Since the script is a program, loops and definitions may be used to
// build larger graphs.
package lisp_adapter
