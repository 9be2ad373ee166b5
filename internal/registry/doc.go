// Package registry provides the central "glue" for the module system.
//
// The Registry maps the class names used in project files (e.g. "GPUMeshes"
// or "CallMesh") to the Go constructors of module and call classes. Plugins
// populate it at startup through their Register method.
//
// After registration the registry is validated to ensure that every slot
// refers to call classes that exist and that every callback is bound to a
// function the call class actually declares, so that wiring errors surface
// at startup rather than on the first frame.
package registry
