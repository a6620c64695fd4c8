package query

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *Trie, q ecs.Mask) []ecs.EntityID {
	var out []ecs.EntityID
	for e := range t.Search(q) {
		out = append(out, e.ID())
	}
	slices.Sort(out)
	return out
}

func bruteForce(entities []*ecs.Entity, q ecs.Mask) []ecs.EntityID {
	var out []ecs.EntityID
	for _, e := range entities {
		if e.Mask().ContainsAll(q) {
			out = append(out, e.ID())
		}
	}
	slices.Sort(out)
	return out
}

func TestTrieSupersetMatchesBruteForce(t *testing.T) {
	for _, kinds := range []int{6, 70} {
		w := newTestWorld(kinds)
		depth := w.Registry().Len()
		trie := NewTrie(depth)
		rng := rand.New(rand.NewPCG(uint64(kinds), 99))

		var entities []*ecs.Entity
		for i := 0; i < 300; i++ {
			var bits []int
			for b := 0; b < kinds; b++ {
				if rng.IntN(3) == 0 {
					bits = append(bits, b)
				}
			}
			e := w.Create(flags(bits...)...)
			trie.Insert(e)
			entities = append(entities, e)
		}
		require.Equal(t, len(entities), trie.Len())

		assert.Equal(t, bruteForce(entities, ecs.Mask{}), collect(trie, ecs.Mask{}), "zero query yields everything")

		full := make([]int, depth)
		for i := range full {
			full[i] = i
		}
		assert.Equal(t, bruteForce(entities, ecs.MaskFromBits(full...)), collect(trie, ecs.MaskFromBits(full...)))

		for round := 0; round < 200; round++ {
			var bits []int
			for b := 0; b < kinds; b++ {
				if rng.IntN(8) == 0 {
					bits = append(bits, b)
				}
			}
			q := ecs.MaskFromBits(bits...)
			require.Equal(t, bruteForce(entities, q), collect(trie, q), "kinds=%d query=%s", kinds, q)
		}
	}
}

func TestTrieFullMaskOnlyMatchesCompleteEntities(t *testing.T) {
	w := newTestWorld(3)
	trie := NewTrie(w.Registry().Len())
	all := w.Create(append(flags(0, 1, 2), &located{})...)
	partial := w.Create(flags(0, 1, 2)...)
	trie.Insert(all)
	trie.Insert(partial)

	q := ecs.MaskFromBits(0, 1, 2, 3)
	assert.Equal(t, []ecs.EntityID{all.ID()}, collect(trie, q))
	assert.Empty(t, collect(trie, ecs.MaskFromBits(10)), "bits beyond depth never match")
}

func TestTrieRemoveAndPrune(t *testing.T) {
	w := newTestWorld(4)
	trie := NewTrie(w.Registry().Len())
	a := w.Create(flags(0, 2)...)
	b := w.Create(flags(0, 2)...)
	c := w.Create(flags(1)...)
	for _, e := range []*ecs.Entity{a, b, c} {
		trie.Insert(e)
	}

	assert.True(t, trie.Remove(a.ID()))
	assert.False(t, trie.Remove(a.ID()), "second removal is a no-op")
	assert.Equal(t, []ecs.EntityID{b.ID()}, collect(trie, ecs.MaskFromBits(0)))

	assert.True(t, trie.Remove(b.ID()))
	assert.Nil(t, trie.root.children[1], "empty branch for bit 0 is pruned")
	assert.Equal(t, []ecs.EntityID{c.ID()}, collect(trie, ecs.Mask{}))

	trie.Clear()
	assert.Zero(t, trie.Len())
	assert.Empty(t, collect(trie, ecs.Mask{}))
}

func TestTrieInsertRelocates(t *testing.T) {
	w := newTestWorld(3)
	trie := NewTrie(w.Registry().Len())
	e := w.Create(flags(0)...)
	trie.Insert(e)

	e.AddComponent(flag{kind: kindN(2)})
	trie.Insert(e)
	assert.Equal(t, 1, trie.Len())
	assert.Equal(t, []ecs.EntityID{e.ID()}, collect(trie, ecs.MaskFromBits(0, 2)))
}

func TestTrieSearchStopsEarly(t *testing.T) {
	w := newTestWorld(2)
	trie := NewTrie(w.Registry().Len())
	for i := 0; i < 5; i++ {
		trie.Insert(w.Create(flags(0)...))
	}
	n := 0
	for range trie.Search(ecs.Mask{}) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}
