// internal/slotid/doc.go

/*
Package slotid provides a structured representation of the full names that
address graph elements: module instances, their slots and their parameters.

The canonical format is a "::"-separated sequence of segments with an
optional leading "::" marking the graph root, e.g. `::inst::gpu::meshes`.
The last segment of a slot or parameter name is the slot; everything before
it names the module instance. Parameter names may themselves contain "::"
(`::inst::view::anim::speed`), so resolving a parameter tries every split
point, longest module name first.
*/
package slotid
