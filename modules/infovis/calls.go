package infovis

import "github.com/specialistvlad/callgrid/internal/call"

// Function indices of CallTable.
const (
	FnGetData = 0
	FnGetHash = 1
)

// TableMeta is the metadata of a table call. FrameID flows upstream.
type TableMeta struct {
	DataHash   uint64
	FrameCount uint32
	FrameID    uint32
}

// CallTable transports a float table.
type CallTable struct {
	call.Generic[*Table, TableMeta]
}

var CallTableDescription = &call.Description{
	ClassName: "CallTable",
	Doc:       "Call transporting a float table",
	Functions: []string{"GetData", "GetHash"},
	New:       func() call.Call { return &CallTable{} },
}
