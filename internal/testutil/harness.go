package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/callgrid/internal/app"
	"github.com/specialistvlad/callgrid/internal/config"
	"github.com/specialistvlad/callgrid/internal/hcl_adapter"
	"github.com/specialistvlad/callgrid/internal/lisp_adapter"
	"github.com/specialistvlad/callgrid/internal/registry"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App

	logs *SafeBuffer
}

// WriteProject writes files, keyed by relative path, into a fresh temporary
// directory and returns it.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// NewLoader returns the loader the command line uses.
func NewLoader() config.Loader {
	return config.NewMultiLoader(hcl_adapter.NewLoader(), lisp_adapter.NewLoader())
}

// NewTestApp writes files and constructs an App around them. A startup
// panic is recovered and reported through HarnessResult.Err with a nil App.
func NewTestApp(t *testing.T, files map[string]string, cfg app.Config, plugins ...registry.Plugin) *HarnessResult {
	t.Helper()

	cfg.ProjectPaths = []string{WriteProject(t, files)}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	logBuffer := &SafeBuffer{}
	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("CALLGRID_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, &cfg, NewLoader(), plugins...)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}
	return &HarnessResult{LogOutput: logBuffer.String(), App: testApp, logs: logBuffer}
}

// RunApp constructs an App like NewTestApp and runs it to completion.
func RunApp(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config, plugins ...registry.Plugin) *HarnessResult {
	t.Helper()

	res := NewTestApp(t, files, cfg, plugins...)
	if res.Err != nil {
		return res
	}
	res.Err = res.App.Run(ctx)
	res.LogOutput = res.logs.String()

	if os.Getenv("CALLGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), res.LogOutput)
	}
	return res
}
