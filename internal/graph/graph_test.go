package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/ctxlog"
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/param"
	"github.com/specialistvlad/callgrid/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type numberCall struct {
	call.Generic[int, uint64]
}

var numberCallDesc = &call.Description{
	ClassName: "CallNumber",
	Functions: call.GenericFunctions,
	New:       func() call.Call { return &numberCall{} },
}

var otherCallDesc = &call.Description{
	ClassName: "CallOther",
	Functions: []string{"Ping"},
	New:       func() call.Call { return &numberCall{} },
}

// lifecycle records Create and Release order across modules.
type lifecycle struct {
	events []string
	failOn string
}

type source struct {
	module.Base
	life  *lifecycle
	value *param.Int
}

func (s *source) Create(context.Context) error {
	s.life.events = append(s.life.events, "create "+s.Name())
	if s.life.failOn == s.Name() {
		return errors.New("boom")
	}
	return nil
}

func (s *source) Release(context.Context) {
	s.life.events = append(s.life.events, "release "+s.Name())
}

type filter struct {
	source
	in *module.CallerSlot
}

func newSource(life *lifecycle) module.Module {
	s := &source{}
	initSource(s, life)
	return s
}

func initSource(s *source, life *lifecycle) {
	s.life = life
	out := s.MakeCalleeSlot("out", "number output")
	out.SetCallback("CallNumber", "GetData", func(c call.Call) bool {
		nc, ok := call.As[*numberCall](c)
		if !ok {
			return false
		}
		nc.SetData(s.value.Value())
		return true
	})
	out.SetCallback("CallNumber", "GetMetaData", func(call.Call) bool { return true })
	s.value = module.AddParam(&s.Base, "value", param.NewInt(1))
	module.AddParam(&s.Base, "anim::speed", param.NewFloat(1))
}

func newFilter(life *lifecycle) module.Module {
	f := &filter{}
	initSource(&f.source, life)
	f.in = f.MakeCallerSlot("in", "number input", "CallNumber")
	return f
}

func newTestGraph(t *testing.T) (*Graph, *lifecycle, context.Context) {
	t.Helper()
	life := &lifecycle{}
	reg := registry.New()
	reg.RegisterCall(numberCallDesc)
	reg.RegisterCall(otherCallDesc)
	reg.RegisterModule(&registry.ModuleDescription{ClassName: "Source", New: func() module.Module { return newSource(life) }})
	reg.RegisterModule(&registry.ModuleDescription{ClassName: "Filter", New: func() module.Module { return newFilter(life) }})
	reg.RegisterModule(&registry.ModuleDescription{ClassName: "Sink", IsView: true, New: func() module.Module { return newFilter(life) }})

	ctx := ctxlog.WithLogger(context.Background(), ctxlog.Discard())
	return New(ctx, reg), life, ctx
}

func addModules(t *testing.T, g *Graph, ctx context.Context, defs ...[2]string) {
	t.Helper()
	for _, d := range defs {
		_, err := g.AddModule(ctx, d[0], d[1])
		require.NoError(t, err)
	}
}

func TestAddModule(t *testing.T) {
	g, _, ctx := newTestGraph(t)

	m, err := g.AddModule(ctx, "Source", "::inst::src")
	require.NoError(t, err)
	assert.Equal(t, "inst::src", m.ModuleBase().Name())
	assert.Equal(t, "Source", m.ModuleBase().ClassName())

	_, err = g.AddModule(ctx, "Source", "inst::src")
	assert.ErrorIs(t, err, ErrDuplicateModule)

	_, err = g.AddModule(ctx, "Nope", "x")
	assert.ErrorIs(t, err, ErrClassNotFound)

	_, err = g.AddModule(ctx, "Source", "bad name")
	assert.Error(t, err)

	found, ok := g.Module("::inst::src")
	require.True(t, ok)
	assert.Same(t, m, found)
}

func TestConnect(t *testing.T) {
	g, _, ctx := newTestGraph(t)
	addModules(t, g, ctx, [2]string{"Source", "src"}, [2]string{"Filter", "flt"}, [2]string{"Sink", "view"})

	require.NoError(t, g.Connect(ctx, "CallNumber", "::flt::in", "::src::out"))
	require.NoError(t, g.Connect(ctx, "CallNumber", "view::in", "flt::out"))

	flt, _ := g.Module("flt")
	c, ok := module.CallAs[*numberCall](flt.(*filter).in)
	require.True(t, ok)
	require.True(t, c.Invoke(call.FnGetData))
	assert.Equal(t, 1, c.Data())

	caller, callee := c.Endpoints()
	assert.Equal(t, "flt::in", caller)
	assert.Equal(t, "src::out", callee)

	assert.Equal(t, []Connection{
		{Class: "CallNumber", From: "flt::in", To: "src::out"},
		{Class: "CallNumber", From: "view::in", To: "flt::out"},
	}, g.Connections())

	views := g.Views()
	require.Len(t, views, 1)
	assert.Equal(t, "view", views[0].Name)
}

func TestConnect_Rejections(t *testing.T) {
	testCases := []struct {
		name        string
		class       string
		from, to    string
		expectedErr error
	}{
		{name: "unknown call class", class: "Nope", from: "flt::in", to: "src::out", expectedErr: ErrClassNotFound},
		{name: "unknown module", class: "CallNumber", from: "ghost::in", to: "src::out", expectedErr: ErrModuleNotFound},
		{name: "unknown caller slot", class: "CallNumber", from: "flt::nope", to: "src::out", expectedErr: ErrSlotNotFound},
		{name: "callee slot used as caller", class: "CallNumber", from: "src::out", to: "flt::out", expectedErr: ErrSlotNotFound},
		{name: "incompatible caller", class: "CallOther", from: "flt::in", to: "src::out", expectedErr: ErrIncompatibleCall},
		{name: "self connection", class: "CallNumber", from: "flt::in", to: "flt::out", expectedErr: ErrCycle},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, _, ctx := newTestGraph(t)
			addModules(t, g, ctx, [2]string{"Source", "src"}, [2]string{"Filter", "flt"})

			err := g.Connect(ctx, tc.class, tc.from, tc.to)
			require.ErrorIs(t, err, tc.expectedErr)
			assert.Empty(t, g.Connections())
			assert.Zero(t, g.arena.Len())
		})
	}

	t.Run("already connected", func(t *testing.T) {
		g, _, ctx := newTestGraph(t)
		addModules(t, g, ctx, [2]string{"Source", "a"}, [2]string{"Source", "b"}, [2]string{"Filter", "flt"})
		require.NoError(t, g.Connect(ctx, "CallNumber", "flt::in", "a::out"))

		err := g.Connect(ctx, "CallNumber", "flt::in", "b::out")
		assert.ErrorIs(t, err, ErrAlreadyConnected)
		assert.Equal(t, 1, g.arena.Len())
	})

	t.Run("longer cycle", func(t *testing.T) {
		g, _, ctx := newTestGraph(t)
		addModules(t, g, ctx, [2]string{"Filter", "a"}, [2]string{"Filter", "b"})
		require.NoError(t, g.Connect(ctx, "CallNumber", "b::in", "a::out"))

		err := g.Connect(ctx, "CallNumber", "a::in", "b::out")
		assert.ErrorIs(t, err, ErrCycle)
	})
}

func TestDisconnect(t *testing.T) {
	g, _, ctx := newTestGraph(t)
	addModules(t, g, ctx, [2]string{"Source", "src"}, [2]string{"Filter", "flt"})
	require.NoError(t, g.Connect(ctx, "CallNumber", "flt::in", "src::out"))

	flt, _ := g.Module("flt")
	held, ok := module.CallAs[*numberCall](flt.(*filter).in)
	require.True(t, ok)

	require.NoError(t, g.Disconnect(ctx, "flt::in"))

	_, ok = module.CallAs[*numberCall](flt.(*filter).in)
	assert.False(t, ok)
	assert.False(t, held.Invoke(call.FnGetData), "a removed call must not dispatch")
	assert.Empty(t, g.Connections())

	assert.ErrorIs(t, g.Disconnect(ctx, "flt::in"), ErrNotConnected)

	// The slot can be rewired.
	require.NoError(t, g.Connect(ctx, "CallNumber", "flt::in", "src::out"))
}

func TestCreateAndRelease(t *testing.T) {
	t.Run("producers first, consumers released first", func(t *testing.T) {
		g, life, ctx := newTestGraph(t)
		addModules(t, g, ctx, [2]string{"Sink", "view"}, [2]string{"Filter", "flt"}, [2]string{"Source", "src"})
		require.NoError(t, g.Connect(ctx, "CallNumber", "view::in", "flt::out"))
		require.NoError(t, g.Connect(ctx, "CallNumber", "flt::in", "src::out"))

		require.NoError(t, g.Create(ctx))
		g.Release(ctx)

		assert.Equal(t, []string{
			"create src", "create flt", "create view",
			"release view", "release flt", "release src",
		}, life.events)
	})

	t.Run("failure rolls back", func(t *testing.T) {
		g, life, ctx := newTestGraph(t)
		addModules(t, g, ctx, [2]string{"Sink", "view"}, [2]string{"Filter", "flt"}, [2]string{"Source", "src"})
		require.NoError(t, g.Connect(ctx, "CallNumber", "view::in", "flt::out"))
		require.NoError(t, g.Connect(ctx, "CallNumber", "flt::in", "src::out"))
		life.failOn = "flt"

		err := g.Create(ctx)
		require.ErrorContains(t, err, "create module flt (Filter): boom")
		assert.Equal(t, []string{"create src", "create flt", "release src"}, life.events)

		for _, inst := range g.Instances() {
			assert.False(t, inst.Created(), inst.Name)
		}

		life.events = nil
		g.Release(ctx)
		assert.Empty(t, life.events, "nothing left to release")
	})
}

func TestRemoveModule(t *testing.T) {
	g, life, ctx := newTestGraph(t)
	addModules(t, g, ctx, [2]string{"Source", "src"}, [2]string{"Filter", "flt"})
	require.NoError(t, g.Connect(ctx, "CallNumber", "flt::in", "src::out"))
	require.NoError(t, g.Create(ctx))

	producers, err := g.Producers("flt")
	require.NoError(t, err)
	assert.Equal(t, []string{"src"}, producers)
	consumers, err := g.Consumers("::src")
	require.NoError(t, err)
	assert.Equal(t, []string{"flt"}, consumers)

	require.NoError(t, g.RemoveModule(ctx, "src"))

	assert.Contains(t, life.events, "release src")
	producers, err = g.Producers("flt")
	require.NoError(t, err)
	assert.Empty(t, producers)
	_, err = g.Consumers("src")
	assert.ErrorIs(t, err, ErrModuleNotFound)
	assert.Empty(t, g.Connections())
	flt, _ := g.Module("flt")
	assert.False(t, flt.(*filter).in.IsConnected())
	_, ok := g.Module("src")
	assert.False(t, ok)
	assert.ErrorIs(t, g.RemoveModule(ctx, "src"), ErrModuleNotFound)
}

func TestParams(t *testing.T) {
	g, _, ctx := newTestGraph(t)
	addModules(t, g, ctx, [2]string{"Source", "inst::src"})

	require.NoError(t, g.SetParamValue("::inst::src::value", "42"))
	v, err := g.ParamValue("inst::src::value")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	t.Run("names containing separators", func(t *testing.T) {
		require.NoError(t, g.SetParamValue("::inst::src::anim::speed", "2.5"))
		v, err := g.ParamValue("::inst::src::anim::speed")
		require.NoError(t, err)
		assert.Equal(t, "2.5", v)
	})

	t.Run("cty values", func(t *testing.T) {
		require.NoError(t, g.SetParamCty("inst::src::value", cty.NumberIntVal(7)))
		v, _ := g.ParamValue("inst::src::value")
		assert.Equal(t, "7", v)
	})

	t.Run("read-only rejected", func(t *testing.T) {
		p, err := g.Param("inst::src::value")
		require.NoError(t, err)
		p.SetGUIReadOnly(true)
		defer p.SetGUIReadOnly(false)

		assert.ErrorIs(t, g.SetParamValue("inst::src::value", "1"), ErrReadOnly)
		assert.ErrorIs(t, g.SetParamCty("inst::src::value", cty.NumberIntVal(1)), ErrReadOnly)
		v, _ := g.ParamValue("inst::src::value")
		assert.Equal(t, "7", v)
	})

	t.Run("lookup errors", func(t *testing.T) {
		_, err := g.Param("ghost::value")
		assert.ErrorIs(t, err, ErrModuleNotFound)
		_, err = g.Param("inst::src::nope")
		assert.ErrorIs(t, err, ErrSlotNotFound)
		assert.Error(t, g.SetParamValue("inst::src::value", "not-a-number"))
	})

	names := make([]string, 0)
	for _, p := range g.Params() {
		names = append(names, p.FullName)
	}
	assert.Equal(t, []string{"inst::src::value", "inst::src::anim::speed"}, names)
}
