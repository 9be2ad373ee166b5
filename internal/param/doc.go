// Package param implements the typed, dirty-trackable value cells that
// modules expose to project files, remote control and their own update
// logic.
//
// A parameter is marked dirty on every external change of its value and
// stays dirty until the module code that acted on the change clears it with
// ResetDirty. Setting a value equal to the current one is not a change: it
// neither sets nor clears the flag.
//
// The GUI read-only flag is advisory for the parameter itself. The graph's
// external setters (project loading and remote control) refuse to write a
// read-only parameter, while the owning module may still update it.
package param
