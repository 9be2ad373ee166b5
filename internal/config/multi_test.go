package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/callgrid/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// fakeLoader declares one module per file it is asked to load.
type fakeLoader struct {
	ext   string
	files []string
}

func (f *fakeLoader) Extensions() []string { return []string{f.ext} }

func (f *fakeLoader) Load(_ context.Context, paths ...string) (*Project, error) {
	f.files = append(f.files, paths...)
	p := &Project{}
	for _, path := range paths {
		p.Modules = append(p.Modules, &ModuleDef{Class: f.ext, Name: filepath.Base(path), Source: path})
	}
	return p, nil
}

func TestMultiLoader(t *testing.T) {
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.Discard())
	root := t.TempDir()
	for _, name := range []string{"a.hcl", "b.lisp", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o644))
	}

	hcl := &fakeLoader{ext: ".hcl"}
	lisp := &fakeLoader{ext: ".lisp"}
	m := NewMultiLoader(hcl, lisp)

	project, err := m.Load(ctx, root)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "a.hcl")}, hcl.files)
	assert.Equal(t, []string{filepath.Join(root, "b.lisp")}, lisp.files)
	require.Len(t, project.Modules, 2)
	assert.Equal(t, "a.hcl", project.Modules[0].Name)
	assert.Equal(t, "b.lisp", project.Modules[1].Name)

	t.Run("no files", func(t *testing.T) {
		_, err := m.Load(ctx, t.TempDir())
		assert.ErrorContains(t, err, "no project files")
	})

	t.Run("duplicate extension panics", func(t *testing.T) {
		assert.PanicsWithValue(t, "loader for extension '.hcl' already registered", func() {
			NewMultiLoader(hcl, &fakeLoader{ext: ".hcl"})
		})
	})
}

func TestProjectMerge(t *testing.T) {
	p := &Project{}
	assert.True(t, p.IsEmpty())

	p.Merge(&Project{
		Views:  []*ModuleDef{{Class: "View3D", Name: "inst::view"}},
		Params: []*ParamDef{{Name: "inst::view::anim::play", Value: cty.True}},
		Calls:  []*CallDef{{Class: "CallRender3D", From: "inst::view::rendering", To: "inst::r::rendering"}},
	})
	p.Merge(nil)

	assert.False(t, p.IsEmpty())
	assert.Len(t, p.Views, 1)
	assert.Len(t, p.Params, 1)
	assert.Len(t, p.Calls, 1)
}
