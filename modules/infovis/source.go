package infovis

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/chain"
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/param"
)

// TableSource serves a table read from a CSV file, or synthetic data when
// no file is set.
type TableSource struct {
	module.Base

	out *module.CalleeSlot

	path    *param.FilePath
	rows    *param.Int
	columns *param.Int
	seed    *param.Int
	group   param.Group

	version chain.Version
	table   *Table
	err     error
}

func NewTableSource() *TableSource {
	m := &TableSource{}
	m.out = m.MakeCalleeSlot("table", "Table output")
	m.out.SetCallback(CallTableDescription.ClassName, "GetData", m.getData)
	m.out.SetCallback(CallTableDescription.ClassName, "GetHash", m.getHash)

	m.path = module.AddParam(&m.Base, "path", param.NewFilePath(""))
	m.rows = module.AddParam(&m.Base, "rows", param.NewIntRange(100, 1, 1_000_000))
	m.columns = module.AddParam(&m.Base, "columns", param.NewIntRange(4, 1, 64))
	m.seed = module.AddParam(&m.Base, "seed", param.NewInt(1))
	m.group = param.Group{m.path, m.rows, m.columns, m.seed}
	return m
}

func (m *TableSource) Create(ctx context.Context) error {
	m.group.ResetDirty()
	m.reload()
	return nil
}

// Table returns the current table, or nil when loading failed.
func (m *TableSource) Table() *Table { return m.table }

func (m *TableSource) checkParams() {
	if !m.group.AnyDirty() {
		return
	}
	m.group.ResetDirty()
	m.reload()
}

func (m *TableSource) reload() {
	m.version.Bump()
	if path := m.path.Value(); path != "" {
		m.table, m.err = loadCSV(path)
	} else {
		m.table, m.err = synthesize(m.rows.Value(), m.columns.Value(), uint64(m.seed.Value()))
	}
	if m.err != nil {
		m.Logger().Error("Cannot load table.", "error", m.err)
		return
	}
	m.Logger().Debug("Table loaded.", "rows", m.table.Rows, "columns", m.table.ColumnCount(), "hash", m.version.Hash())
}

func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// synthesize generates columns of noisy sine waves named c0, c1, ...
func synthesize(rows, columns int, seed uint64) (*Table, error) {
	rng := rand.New(rand.NewPCG(seed, 0))
	names := make([]string, columns)
	for c := range names {
		names[c] = "c" + strconv.Itoa(c)
	}
	data := make([][]float32, rows)
	for r := range data {
		row := make([]float32, columns)
		for c := range row {
			row[c] = math32.Sin(float32(r)*0.1*float32(c+1)) + 0.1*rng.Float32()
		}
		data[r] = row
	}
	return NewTable(names, data)
}

func (m *TableSource) getHash(c call.Call) bool {
	tc, ok := call.As[*CallTable](c)
	if !ok {
		return false
	}
	m.checkParams()
	if m.table == nil {
		return false
	}
	tc.SetMetaData(TableMeta{DataHash: m.version.Hash(), FrameCount: 1, FrameID: 0})
	return true
}

func (m *TableSource) getData(c call.Call) bool {
	tc, ok := call.As[*CallTable](c)
	if !ok {
		return false
	}
	m.checkParams()
	if m.table == nil {
		return false
	}
	tc.SetData(m.table)
	tc.SetMetaData(TableMeta{DataHash: m.version.Hash(), FrameCount: 1, FrameID: 0})
	return true
}
