package lisp_adapter

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/specialistvlad/callgrid/internal/config"
	"github.com/specialistvlad/callgrid/internal/slotid"
	"github.com/zclconf/go-cty/cty"
)

// registerBuiltins installs the project builtins on env. Every builtin
// appends to project and returns nil.
func registerBuiltins(env *zygo.Zlisp, project *config.Project, file string) {
	env.AddFunction("mmCreateView", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("%s requires an instance, a class and a name, got %d arguments", name, len(args))
		}
		strs, err := toStrings(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		project.Views = append(project.Views, &config.ModuleDef{
			Class:  strs[1],
			Name:   slotid.Join(strs[0], strs[2]),
			Source: file,
		})
		return zygo.SexpNull, nil
	})

	env.AddFunction("mmCreateModule", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires a class and a full name, got %d arguments", name, len(args))
		}
		strs, err := toStrings(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		project.Modules = append(project.Modules, &config.ModuleDef{Class: strs[0], Name: strs[1], Source: file})
		return zygo.SexpNull, nil
	})

	env.AddFunction("mmCreateCall", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("%s requires a class, a caller slot and a callee slot, got %d arguments", name, len(args))
		}
		strs, err := toStrings(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		project.Calls = append(project.Calls, &config.CallDef{Class: strs[0], From: strs[1], To: strs[2], Source: file})
		return zygo.SexpNull, nil
	})

	env.AddFunction("mmSetParamValue", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires a parameter name and a value, got %d arguments", name, len(args))
		}
		paramName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: name: %w", name, err)
		}
		project.Params = append(project.Params, &config.ParamDef{Name: paramName, Value: toCty(args[1]), Source: file})
		return zygo.SexpNull, nil
	})
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toStrings(builtin string, args []zygo.Sexp) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		s, err := toString(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", builtin, i+1, err)
		}
		out[i] = s
	}
	return out, nil
}

// toCty maps a script value to a cty value. Numbers stay numbers, strings
// stay strings, and anything else (booleans, symbols) travels as its
// printed form, which every parameter kind parses.
func toCty(s zygo.Sexp) cty.Value {
	switch v := s.(type) {
	case *zygo.SexpStr:
		return cty.StringVal(v.S)
	case *zygo.SexpInt:
		return cty.NumberIntVal(v.Val)
	case *zygo.SexpFloat:
		return cty.NumberFloatVal(v.Val)
	}
	return cty.StringVal(s.SexpString(nil))
}
