package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestDirtyGating(t *testing.T) {
	p := NewFloat(1)
	require.False(t, p.IsDirty(), "a fresh parameter is clean")

	p.Set(2)
	assert.True(t, p.IsDirty())

	// A no-op change must not clear the flag before the owner observed it.
	p.Set(2)
	assert.True(t, p.IsDirty())

	p.ResetDirty()
	assert.False(t, p.IsDirty())

	p.Set(2)
	assert.False(t, p.IsDirty(), "setting the current value is not a change")
}

func TestSetValueQuiet(t *testing.T) {
	p := NewInt(3)
	calls := 0
	p.OnUpdate(func() { calls++ })

	p.SetValueQuiet(5)
	assert.Equal(t, 5, p.Value())
	assert.False(t, p.IsDirty())
	assert.Zero(t, calls)

	p.Set(6)
	assert.True(t, p.IsDirty())
	assert.Equal(t, 1, calls)
}

func TestRangeClamp(t *testing.T) {
	f := NewFloatRange(4, 0.01, 100)
	f.Set(1000)
	assert.Equal(t, float32(100), f.Value())

	i := NewIntRange(-5, 2, 100)
	assert.Equal(t, 2, i.Value(), "the default is clamped too")
}

func TestSetString(t *testing.T) {
	testCases := []struct {
		name      string
		param     Param
		input     string
		want      string
		expectErr bool
	}{
		{name: "bool", param: NewBool(false), input: "true", want: "true"},
		{name: "bool invalid", param: NewBool(false), input: "maybe", expectErr: true},
		{name: "int", param: NewInt(0), input: " 42 ", want: "42"},
		{name: "int invalid", param: NewInt(0), input: "4.2", expectErr: true},
		{name: "float", param: NewFloat(0), input: "0.25", want: "0.25"},
		{name: "string", param: NewString(""), input: "hello world", want: "hello world"},
		{name: "vector", param: NewVector3([3]float32{}), input: "1;2.5;-3", want: "1;2.5;-3"},
		{name: "vector wrong arity", param: NewVector3([3]float32{}), input: "1;2", expectErr: true},
		{name: "color rgb", param: NewColor([4]float32{}), input: "0;0;1", want: "0;0;1;1"},
		{name: "color hex", param: NewColor([4]float32{}), input: "#ff000080", want: "1;0;0;0.5019608"},
		{name: "color name", param: NewColor([4]float32{}), input: "White", want: "1;1;1;1"},
		{name: "enum by name", param: NewEnum(0, map[int]string{0: "sphere", 1: "box"}), input: "box", want: "box"},
		{name: "enum by value", param: NewEnum(0, map[int]string{0: "sphere", 1: "box"}), input: "1", want: "box"},
		{name: "enum unknown", param: NewEnum(0, map[int]string{0: "sphere"}), input: "cone", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.param.SetString(tc.input)
			if tc.expectErr {
				require.Error(t, err)
				assert.False(t, tc.param.IsDirty(), "a rejected value must not dirty the parameter")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, tc.param.ValueString())
			assert.True(t, tc.param.IsDirty())
		})
	}
}

func TestSetCty(t *testing.T) {
	t.Run("number converts into float", func(t *testing.T) {
		p := NewFloat(0)
		require.NoError(t, p.SetCty(cty.NumberFloatVal(1.5)))
		assert.Equal(t, float32(1.5), p.Value())
	})

	t.Run("string converts into bool", func(t *testing.T) {
		p := NewBool(false)
		require.NoError(t, p.SetCty(cty.StringVal("true")))
		assert.True(t, p.Value())
	})

	t.Run("tuple into vector", func(t *testing.T) {
		p := NewVector3([3]float32{})
		v := cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2), cty.NumberFloatVal(3.5)})
		require.NoError(t, p.SetCty(v))
		assert.Equal(t, [3]float32{1, 2, 3.5}, p.Value())
	})

	t.Run("fractional number into int fails", func(t *testing.T) {
		p := NewInt(0)
		assert.Error(t, p.SetCty(cty.NumberFloatVal(1.5)))
	})

	t.Run("null is rejected", func(t *testing.T) {
		p := NewString("x")
		assert.ErrorContains(t, p.SetCty(cty.NullVal(cty.String)), "non-null")
	})
}

func TestButton(t *testing.T) {
	b := NewButton()
	presses := 0
	b.OnUpdate(func() { presses++ })

	require.NoError(t, b.SetString(""))
	b.Press()

	assert.Equal(t, 2, presses)
	assert.True(t, b.IsDirty())
	b.ResetDirty()
	assert.False(t, b.IsDirty())
}

func TestGUIReadOnly(t *testing.T) {
	p := NewFilePath("in.raw")
	p.SetGUIReadOnly(true)
	assert.True(t, p.IsGUIReadOnly())

	// The owning module may still write.
	p.Set("other.raw")
	assert.Equal(t, "other.raw", p.Value())
}

func TestEnumNames(t *testing.T) {
	e := NewEnum(2, map[int]string{2: "cylinder", 0: "sphere", 1: "box"})
	assert.Equal(t, []string{"sphere", "box", "cylinder"}, e.Names())
	assert.Equal(t, 2, e.Value())
	assert.Equal(t, KindEnum, e.Kind())
}

func TestGroup(t *testing.T) {
	a, b := NewBool(false), NewInt(0)
	g := Group{a, b}
	assert.False(t, g.AnyDirty())

	b.Set(3)
	assert.True(t, g.AnyDirty())

	g.SetGUIReadOnly(true)
	assert.True(t, a.IsGUIReadOnly())
	assert.True(t, b.IsGUIReadOnly())

	g.ResetDirty()
	assert.False(t, g.AnyDirty())
}
