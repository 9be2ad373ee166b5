package flowvis

import (
	"fmt"
	"os"

	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/param"
	"github.com/vmihailenco/msgpack/v5"
)

const resultFileVersion = 1

type resultFile struct {
	Version int     `msgpack:"version"`
	Result  *Result `msgpack:"result"`
}

// WriteResultFile stores res at path.
func WriteResultFile(path string, res *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	if err := msgpack.NewEncoder(f).Encode(&resultFile{Version: resultFileVersion, Result: res}); err != nil {
		f.Close()
		return fmt.Errorf("encode result file '%s': %w", path, err)
	}
	return f.Close()
}

// ReadResultFile loads a result written by WriteResultFile.
func ReadResultFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open result file: %w", err)
	}
	defer f.Close()

	var rf resultFile
	if err := msgpack.NewDecoder(f).Decode(&rf); err != nil {
		return nil, fmt.Errorf("%w: decode result file '%s': %w", ErrMalformedInput, path, err)
	}
	if rf.Version != resultFileVersion {
		return nil, fmt.Errorf("%w: result file '%s' has version %d, expected %d", ErrMalformedInput, path, rf.Version, resultFileVersion)
	}
	if rf.Result == nil {
		return nil, fmt.Errorf("%w: result file '%s' holds no result", ErrMalformedInput, path)
	}
	return rf.Result, nil
}

// ResultFile serves CallResultReader and CallResultWriter from one file.
type ResultFile struct {
	module.Base

	reader *module.CalleeSlot
	writer *module.CalleeSlot
	path   *param.FilePath
}

func NewResultFile() *ResultFile {
	m := &ResultFile{}
	m.reader = m.MakeCalleeSlot("reader", "Reads results from the file")
	m.reader.SetCallback(CallResultReaderDescription.ClassName, "Read", m.read)
	m.writer = m.MakeCalleeSlot("writer", "Writes results to the file")
	m.writer.SetCallback(CallResultWriterDescription.ClassName, "Write", m.write)
	m.path = module.AddParam(&m.Base, "path", param.NewFilePath(""))
	return m
}

func (m *ResultFile) read(c call.Call) bool {
	rc, ok := call.As[*CallResultReader](c)
	if !ok {
		return false
	}
	res, err := ReadResultFile(m.path.Value())
	if err != nil {
		m.Logger().Error("Cannot read results.", "error", err)
		return false
	}
	rc.Result = res
	return true
}

func (m *ResultFile) write(c call.Call) bool {
	wc, ok := call.As[*CallResultWriter](c)
	if !ok || wc.Result == nil {
		return false
	}
	if err := WriteResultFile(m.path.Value(), wc.Result); err != nil {
		m.Logger().Error("Cannot write results.", "error", err)
		return false
	}
	m.Logger().Debug("Results written.", "path", m.path.Value(), "run_id", wc.Result.RunID)
	return true
}
