package ecs

import (
	"fmt"
	"slices"
)

// DefaultMaskWidth bounds the number of component kinds a Registry accepts
// unless another width is given.
const DefaultMaskWidth = 256

// Kind names a component kind. Each kind owns exactly one mask bit.
type Kind string

// Component is a piece of per-entity data. Kind must not dereference its
// receiver, so that the zero value of a pointer component can report its kind.
type Component interface {
	Kind() Kind
}

// Definition describes one component kind. New builds an empty value used to
// decode snapshots; kinds without it cannot be restored.
type Definition struct {
	Kind Kind
	New  func() Component
}

// Registry assigns every component kind a stable bit index in declaration order.
// It is immutable once built.
type Registry struct {
	width int
	kinds []Kind
	bits  map[Kind]int
	defs  map[Kind]Definition
}

// NewRegistry builds the registry from the complete kind list. It panics when a
// kind is declared twice, is empty, or when there are more kinds than width bits.
func NewRegistry(width int, defs ...Definition) *Registry {
	if width <= 0 {
		width = DefaultMaskWidth
	}
	if len(defs) > width {
		panic(fmt.Sprintf("ecs: %d component kinds exceed mask width %d", len(defs), width))
	}
	r := &Registry{
		width: width,
		kinds: make([]Kind, 0, len(defs)),
		bits:  make(map[Kind]int, len(defs)),
		defs:  make(map[Kind]Definition, len(defs)),
	}
	for i, d := range defs {
		if d.Kind == "" {
			panic(fmt.Sprintf("ecs: component kind #%d has no name", i))
		}
		if prev, ok := r.bits[d.Kind]; ok {
			panic(fmt.Sprintf("ecs: component kind %q declared twice (bits %d and %d)", d.Kind, prev, i))
		}
		r.bits[d.Kind] = i
		r.defs[d.Kind] = d
		r.kinds = append(r.kinds, d.Kind)
	}
	return r
}

// Len is the number of registered kinds, which is also the trie depth.
func (r *Registry) Len() int { return len(r.kinds) }

// Width is the maximum number of kinds the registry was sized for.
func (r *Registry) Width() int { return r.width }

// Kinds returns the kinds in bit order.
func (r *Registry) Kinds() []Kind { return slices.Clone(r.kinds) }

// Bit returns the bit owned by kind. Unknown kinds are a programmer error.
func (r *Registry) Bit(kind Kind) int {
	bit, ok := r.bits[kind]
	if !ok {
		panic(fmt.Sprintf("ecs: unknown component kind %q", kind))
	}
	return bit
}

// Lookup is the non-panicking form of Bit.
func (r *Registry) Lookup(kind Kind) (int, bool) {
	bit, ok := r.bits[kind]
	return bit, ok
}

// Definition returns the definition registered for kind.
func (r *Registry) Definition(kind Kind) (Definition, bool) {
	d, ok := r.defs[kind]
	return d, ok
}

// MaskOf ORs the bits of the given kinds.
func (r *Registry) MaskOf(kinds ...Kind) Mask {
	bits := make([]int, len(kinds))
	for i, k := range kinds {
		bits[i] = r.Bit(k)
	}
	return MaskFromBits(bits...)
}

// Names lists the kinds whose bits are set in mask, in bit order.
func (r *Registry) Names(mask Mask) []string {
	var out []string
	for i, k := range r.kinds {
		if mask.Has(i) {
			out = append(out, string(k))
		}
	}
	return out
}
