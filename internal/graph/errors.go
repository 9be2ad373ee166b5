package graph

import "errors"

var (
	// ErrModuleNotFound is returned when a full name names no module instance.
	ErrModuleNotFound = errors.New("module not found")
	// ErrClassNotFound is returned for unregistered module or call classes.
	ErrClassNotFound = errors.New("class not registered")
	// ErrDuplicateModule is returned when an instance name is taken.
	ErrDuplicateModule = errors.New("module name already in use")
	// ErrSlotNotFound is returned when a module has no slot or parameter of
	// the given name.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrIncompatibleCall is returned when a call class cannot connect the
	// two slots.
	ErrIncompatibleCall = errors.New("incompatible call")
	// ErrAlreadyConnected is returned when a caller slot already holds a call.
	ErrAlreadyConnected = errors.New("caller slot already connected")
	// ErrNotConnected is returned when disconnecting an empty caller slot.
	ErrNotConnected = errors.New("caller slot not connected")
	// ErrCycle is returned when a connection would close a cycle.
	ErrCycle = errors.New("connection would create a cycle")
	// ErrReadOnly is returned when setting a GUI-read-only parameter.
	ErrReadOnly = errors.New("parameter is read-only")
)
