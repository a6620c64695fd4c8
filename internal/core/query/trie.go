package query

import (
	"iter"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
)

// node is one level of the bitwise trie. children[b] follows bit value b.
// size counts the entities stored anywhere below the node.
type node struct {
	children [2]*node
	size     int

	// leaf storage, only used at depth == Trie.depth
	entities []*ecs.Entity
	index    map[ecs.EntityID]int
}

// Trie indexes entities by their exact mask in a binary trie of fixed depth.
// Search cost grows with the number of distinct masks in use, not with the
// number of entities.
type Trie struct {
	depth   int
	root    *node
	entries map[ecs.EntityID]ecs.Mask
}

// NewTrie builds an empty trie for masks of depth bits.
func NewTrie(depth int) *Trie {
	return &Trie{
		depth:   depth,
		root:    &node{},
		entries: make(map[ecs.EntityID]ecs.Mask),
	}
}

func (t *Trie) Len() int { return len(t.entries) }

// Contains reports whether the entity is stored in the trie.
func (t *Trie) Contains(id ecs.EntityID) bool {
	_, ok := t.entries[id]
	return ok
}

// Insert stores e at the leaf addressed by its current mask. An entity already
// stored under another mask is moved.
func (t *Trie) Insert(e *ecs.Entity) {
	if t.Contains(e.ID()) {
		t.Remove(e.ID())
	}
	mask := e.Mask()
	n := t.root
	n.size++
	for i := 0; i < t.depth; i++ {
		b := mask.Bit(i)
		if n.children[b] == nil {
			n.children[b] = &node{}
		}
		n = n.children[b]
		n.size++
	}
	if n.index == nil {
		n.index = make(map[ecs.EntityID]int)
	}
	n.index[e.ID()] = len(n.entities)
	n.entities = append(n.entities, e)
	t.entries[e.ID()] = mask
}

// Remove deletes the entity from the leaf it was inserted under and prunes
// empty branches. It reports whether anything was removed.
func (t *Trie) Remove(id ecs.EntityID) bool {
	mask, ok := t.entries[id]
	if !ok {
		return false
	}
	delete(t.entries, id)

	n := t.root
	n.size--
	for i := 0; i < t.depth; i++ {
		b := mask.Bit(i)
		child := n.children[b]
		child.size--
		if child.size == 0 {
			n.children[b] = nil
			return true
		}
		n = child
	}

	pos := n.index[id]
	last := len(n.entities) - 1
	if pos != last {
		moved := n.entities[last]
		n.entities[pos] = moved
		n.index[moved.ID()] = pos
	}
	n.entities[last] = nil
	n.entities = n.entities[:last]
	delete(n.index, id)
	return true
}

// Search yields every entity whose mask is a superset of q. Where q requires a
// bit only the 1-branch is followed; elsewhere both branches are. The trie must
// not be mutated while the sequence is being consumed.
func (t *Trie) Search(q ecs.Mask) iter.Seq[*ecs.Entity] {
	return func(yield func(*ecs.Entity) bool) {
		if q.BitLen() > t.depth {
			return
		}
		var walk func(n *node, i int) bool
		walk = func(n *node, i int) bool {
			if n == nil || n.size == 0 {
				return true
			}
			if i == t.depth {
				for _, e := range n.entities {
					if !yield(e) {
						return false
					}
				}
				return true
			}
			if q.Has(i) {
				return walk(n.children[1], i+1)
			}
			return walk(n.children[0], i+1) && walk(n.children[1], i+1)
		}
		walk(t.root, 0)
	}
}

// Clear resets the trie to an empty root.
func (t *Trie) Clear() {
	t.root = &node{}
	t.entries = make(map[ecs.EntityID]ecs.Mask)
}
