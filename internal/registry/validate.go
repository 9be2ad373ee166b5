package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/callgrid/internal/ctxlog"
)

// ValidateRegistry performs a strict parity check between the module
// classes and the call classes they refer to. Each module class is
// instantiated once, without Create, to inspect its slots.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.CallClasses() {
		desc := r.calls[name]
		if desc.New == nil {
			errs = append(errs, fmt.Sprintf("call '%s': no constructor", name))
		}
		if desc.FunctionCount() == 0 {
			errs = append(errs, fmt.Sprintf("call '%s': declares no functions", name))
		}
	}

	for _, className := range r.ModuleClasses() {
		desc := r.modules[className]
		if desc.New == nil {
			errs = append(errs, fmt.Sprintf("module '%s': no constructor", className))
			continue
		}
		base := desc.New().ModuleBase()

		for _, slot := range base.CallerSlots() {
			if len(slot.Compatible()) == 0 {
				errs = append(errs, fmt.Sprintf("module '%s', caller slot '%s': accepts no call class", className, slot.Name()))
			}
			for _, callClass := range slot.Compatible() {
				if _, ok := r.calls[callClass]; !ok {
					errs = append(errs, fmt.Sprintf("module '%s', caller slot '%s': unknown call class '%s'", className, slot.Name(), callClass))
				}
			}
		}

		for _, slot := range base.CalleeSlots() {
			for _, callClass := range slot.Classes() {
				callDesc, ok := r.calls[callClass]
				if !ok {
					errs = append(errs, fmt.Sprintf("module '%s', callee slot '%s': unknown call class '%s'", className, slot.Name(), callClass))
					continue
				}
				for _, fn := range slot.Functions(callClass) {
					if _, ok := callDesc.FunctionIndex(fn); !ok {
						errs = append(errs, fmt.Sprintf("module '%s', callee slot '%s': call '%s' has no function '%s'", className, slot.Name(), callClass, fn))
					}
				}
				if _, err := slot.DispatchTable(callDesc); err != nil {
					logger.Warn("Callee slot serves a call class only partially and cannot be connected.", "module", className, "slot", slot.Name(), "call", callClass, "error", err)
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
