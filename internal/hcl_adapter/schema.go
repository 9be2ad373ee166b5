package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Views   []*moduleBlock `hcl:"view,block"`
	Modules []*moduleBlock `hcl:"module,block"`
	Params  []*paramBlock  `hcl:"param,block"`
	Calls   []*callBlock   `hcl:"call,block"`
}

// moduleBlock is a `view` or `module` block. Remaining attributes are
// parameter values.
type moduleBlock struct {
	Class  string        `hcl:"class,label"`
	Name   string        `hcl:"instance_name,label"`
	Params []*paramBlock `hcl:"param,block"`
	Body   hcl.Body      `hcl:",remain"`
}

// paramBlock assigns a value to a parameter.
type paramBlock struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value"`
}

// callBlock connects two slots.
type callBlock struct {
	Class string `hcl:"class,label"`
	From  string `hcl:"from"`
	To    string `hcl:"to"`
}
