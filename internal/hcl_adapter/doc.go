// Package hcl_adapter provides the HCL implementation of config.Loader.
//
// A project file declares module instances, calls and parameter values:
//
//	view "View3D" "::inst::view" {
//	  backCol = "#000020"
//	  param "anim::play" { value = true }
//	}
//
//	module "SDFMeshSource" "::inst::src" {
//	  shape = "sphere"
//	}
//
//	call "CallRender3D" {
//	  from = "::inst::view::rendering"
//	  to   = "::inst::renderer::rendering"
//	}
//
//	param "::inst::src::size" { value = 2.5 }
//
// Attributes of a view or module block are parameter values of that
// instance. Parameter names containing "::" can't be HCL identifiers, so
// they are set with nested or top-level param blocks instead.
package hcl_adapter
