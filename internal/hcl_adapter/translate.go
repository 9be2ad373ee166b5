// This file contains the logic for translating HCL schema structs into the
// format-agnostic project model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/callgrid/internal/config"
	"github.com/specialistvlad/callgrid/internal/ctxlog"
	"github.com/specialistvlad/callgrid/internal/slotid"
)

// translateModule converts a view or module block. Its attributes and
// nested param blocks become parameter definitions of the instance.
func (l *Loader) translateModule(ctx context.Context, b *moduleBlock, file string) (*config.ModuleDef, []*config.ParamDef, error) {
	logger := ctxlog.FromContext(ctx).With("class", b.Class, "instance_name", b.Name)
	logger.Debug("Translating HCL module block to internal config model.")

	def := &config.ModuleDef{Class: b.Class, Name: b.Name, Source: file}

	attrs, diags := moduleAttributes(b.Body)
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("in %s '%s' (%s): %w", b.Class, b.Name, file, diags)
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	// Attribute maps are unordered; sort by source position.
	slices.SortFunc(names, func(a, b string) int {
		return attrs[a].Range.Start.Byte - attrs[b].Range.Start.Byte
	})

	var params []*config.ParamDef
	for _, name := range names {
		val, diags := attrs[name].Expr.Value(nil)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("invalid value for '%s' in %s '%s' (%s): %w", name, b.Class, b.Name, file, diags)
		}
		params = append(params, &config.ParamDef{Name: slotid.Join(b.Name, name), Value: val, Source: file})
	}
	for _, p := range b.Params {
		pd, err := translateParam(p, b.Name, file)
		if err != nil {
			return nil, nil, err
		}
		params = append(params, pd)
	}
	return def, params, nil
}

// moduleAttributes returns the attributes of a module block body that gohcl
// left over. The nested param blocks are already decoded but remain in the
// syntax tree, where JustAttributes would reject them.
func moduleAttributes(body hcl.Body) (hcl.Attributes, hcl.Diagnostics) {
	sb, ok := body.(*hclsyntax.Body)
	if !ok {
		return body.JustAttributes()
	}
	var diags hcl.Diagnostics
	for _, block := range sb.Blocks {
		if block.Type != "param" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported block type",
				Detail:   fmt.Sprintf("Blocks of type %q are not expected here; only param blocks are.", block.Type),
				Subject:  block.TypeRange.Ptr(),
			})
		}
	}
	attrs := make(hcl.Attributes, len(sb.Attributes))
	for name, attr := range sb.Attributes {
		attrs[name] = attr.AsHCLAttribute()
	}
	return attrs, diags
}

// translateParam evaluates a param block. Inside a module block the name is
// relative to moduleName.
func translateParam(p *paramBlock, moduleName, file string) (*config.ParamDef, error) {
	name := p.Name
	if moduleName != "" {
		name = slotid.Join(moduleName, p.Name)
	}
	val, diags := p.Value.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid value for param '%s' (%s): %w", name, file, diags)
	}
	return &config.ParamDef{Name: name, Value: val, Source: file}, nil
}
