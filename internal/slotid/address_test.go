// internal/slotid/address_test.go
package slotid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_String(t *testing.T) {
	testCases := []struct {
		name           string
		addr           *Address
		expectedString string
		expectedGlobal string
	}{
		{
			name:           "three segments",
			addr:           &Address{Path: []string{"inst", "gpu", "meshes"}},
			expectedString: "inst::gpu::meshes",
			expectedGlobal: "::inst::gpu::meshes",
		},
		{
			name:           "nil address",
			addr:           nil,
			expectedString: "",
			expectedGlobal: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedString, tc.addr.String())
			assert.Equal(t, tc.expectedGlobal, tc.addr.Global())
		})
	}
}

func TestAddress_RoundTrip(t *testing.T) {
	for _, id := range []string{"a::b::c", "view::anim::speed", "src::out"} {
		t.Run(id, func(t *testing.T) {
			addr, err := Parse(id)
			require.NoError(t, err)
			assert.Equal(t, id, addr.String())

			again, err := Parse(addr.Global())
			require.NoError(t, err)
			assert.True(t, addr.Equal(again))
		})
	}
}

func TestAddress_Splits(t *testing.T) {
	addr, err := Parse("::inst::view::anim::speed")
	require.NoError(t, err)

	assert.Equal(t, [][2]string{
		{"inst::view::anim", "speed"},
		{"inst::view", "anim::speed"},
		{"inst", "view::anim::speed"},
	}, addr.Splits())
}

func TestAddress_ModuleAndLeaf(t *testing.T) {
	addr, err := Parse("inst::gpu::meshes")
	require.NoError(t, err)
	assert.Equal(t, "meshes", addr.Leaf())
	assert.Equal(t, "inst::gpu", addr.Module().String())
	assert.Equal(t, "", (&Address{Path: []string{"x"}}).Module().String())
	assert.Equal(t, "inst::gpu::meshes", Join("::inst::gpu", "meshes"))
}

func TestAddress_Equal(t *testing.T) {
	a := &Address{Path: []string{"a", "b"}}
	assert.True(t, a.Equal(&Address{Path: []string{"a", "b"}}))
	assert.False(t, a.Equal(&Address{Path: []string{"a"}}))
	assert.False(t, a.Equal(nil))
	var n *Address
	assert.True(t, n.Equal(nil))
}
