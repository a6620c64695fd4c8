package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryAssignsBitsInDeclarationOrder(t *testing.T) {
	r := testRegistry()
	assert.Equal(t, 5, r.Len())
	assert.Equal(t, 0, r.Bit(kindPosition))
	assert.Equal(t, 2, r.Bit(kindBudget))
	assert.Equal(t, []Kind{kindPosition, kindDrive, kindBudget, kindName, kindRuntime}, r.Kinds())

	m := r.MaskOf(kindDrive, kindName)
	assert.Equal(t, MaskFromBits(1, 3), m)
	assert.Equal(t, []string{"drive", "name"}, r.Names(m))
}

func TestRegistryFailsFast(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry(0, Definition{Kind: "a"}, Definition{Kind: "a"})
	}, "duplicate kind")
	assert.Panics(t, func() {
		NewRegistry(2, Definition{Kind: "a"}, Definition{Kind: "b"}, Definition{Kind: "c"})
	}, "width exceeded")
	assert.Panics(t, func() {
		NewRegistry(0, Definition{Kind: ""})
	}, "empty kind")
	assert.Panics(t, func() {
		testRegistry().Bit("unknown")
	})

	_, ok := testRegistry().Lookup("unknown")
	assert.False(t, ok)
}

func TestRegistryWiderThan64(t *testing.T) {
	defs := make([]Definition, 100)
	for i := range defs {
		defs[i] = Definition{Kind: Kind("k" + string(rune('A'+i/26)) + string(rune('a'+i%26)))}
	}
	r := NewRegistry(128, defs...)
	m := r.MaskOf(defs[99].Kind, defs[0].Kind)
	assert.True(t, m.Has(99))
	assert.True(t, m.Has(0))
	assert.Equal(t, 2, m.Count())
}
