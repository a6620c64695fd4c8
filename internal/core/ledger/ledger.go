package ledger

import (
	"encoding/json"
	"slices"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
)

// Meta ties an allocation to the rest of the world. Transaction is shared by
// every allocation of one trade; Counterparty is the entity on the other side.
// Both are plain ids so that removing either party never leaves a dangling
// reference behind.
type Meta struct {
	Transaction  string            `json:"transaction,omitempty"`
	Counterparty ecs.EntityID      `json:"counterparty,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
}

// Allocation is a provisional reservation against a ledger.
type Allocation[A any] struct {
	ID     int64        `json:"id"`
	Issued int64        `json:"issued"`
	Amount A            `json:"amount"`
	Meta   Meta         `json:"meta"`
	Owner  ecs.EntityID `json:"owner"`
	// Reason is only set on the record returned by Release.
	Reason string `json:"-"`
}

// Request describes an allocation to be reserved.
type Request[A any] struct {
	Amount A
	Meta   Meta
	Issued int64
}

// Validator decides whether candidate may be appended to l.
type Validator[A any] func(l *Ledger[A], candidate Allocation[A]) bool

// Ledger owns a numeric pool and its open allocations. Available is derived
// and always equals Total minus the sum of open allocations.
type Ledger[A any] struct {
	ops         Arithmetic[A]
	owner       ecs.EntityID
	total       A
	available   A
	allocations []Allocation[A]
	nextID      int64
}

// New builds a ledger owned by owner with the given starting total.
func New[A any](ops Arithmetic[A], owner ecs.EntityID, total A) (*Ledger[A], error) {
	if ops.Negative(total) {
		return nil, opError("new", 0, ErrNegativeTotal)
	}
	l := &Ledger[A]{ops: ops, owner: owner, total: total, nextID: 1}
	l.recompute()
	return l, nil
}

func (l *Ledger[A]) Owner() ecs.EntityID { return l.owner }
func (l *Ledger[A]) Total() A            { return l.total }
func (l *Ledger[A]) Available() A        { return l.available }
func (l *Ledger[A]) Len() int            { return len(l.allocations) }

// SetOwner rebinds the ledger to an entity, used once the owning entity exists.
func (l *Ledger[A]) SetOwner(owner ecs.EntityID) {
	l.owner = owner
	for i := range l.allocations {
		l.allocations[i].Owner = owner
	}
}

// Allocations returns a copy of the open allocations in reservation order.
func (l *Ledger[A]) Allocations() []Allocation[A] { return slices.Clone(l.allocations) }

// Find returns the open allocation with the given id.
func (l *Ledger[A]) Find(id int64) (Allocation[A], bool) {
	i := l.indexOf(id)
	if i < 0 {
		return Allocation[A]{}, false
	}
	return l.allocations[i], true
}

// ByTransaction returns the open allocations sharing a transaction id.
func (l *Ledger[A]) ByTransaction(tx string) []Allocation[A] {
	var out []Allocation[A]
	for _, a := range l.allocations {
		if a.Meta.Transaction == tx {
			out = append(out, a)
		}
	}
	return out
}

// Fits is the default validator.
func Fits[A any](l *Ledger[A], candidate Allocation[A]) bool {
	return l.ops.Fits(candidate.Amount, l.available)
}

// Reserve appends an allocation when validate accepts it. A nil validate uses
// Fits. Nothing is mutated when the reservation fails.
func (l *Ledger[A]) Reserve(req Request[A], validate Validator[A]) (Allocation[A], error) {
	if err := l.ops.Validate(req.Amount); err != nil {
		return Allocation[A]{}, opError("reserve", 0, err)
	}
	if validate == nil {
		validate = Fits[A]
	}
	candidate := Allocation[A]{
		ID:     l.nextID,
		Issued: req.Issued,
		Amount: req.Amount,
		Meta:   req.Meta,
		Owner:  l.owner,
	}
	if !validate(l, candidate) {
		return Allocation[A]{}, opError("reserve", 0, ErrAllocationRejected)
	}
	l.nextID++
	l.allocations = append(l.allocations, candidate)
	l.recompute()
	return candidate, nil
}

// Release removes an open allocation and frees its amount. Releasing an id
// twice fails with ErrNotFound.
func (l *Ledger[A]) Release(id int64, reason string) (Allocation[A], error) {
	i := l.indexOf(id)
	if i < 0 {
		return Allocation[A]{}, opError("release", id, ErrNotFound)
	}
	a := l.allocations[i]
	l.allocations = slices.Delete(l.allocations, i, i+1)
	l.recompute()
	a.Reason = reason
	return a, nil
}

// ReleaseWhere releases every allocation matching pred and returns them.
func (l *Ledger[A]) ReleaseWhere(pred func(Allocation[A]) bool, reason string) []Allocation[A] {
	var released []Allocation[A]
	kept := l.allocations[:0]
	for _, a := range l.allocations {
		if pred(a) {
			a.Reason = reason
			released = append(released, a)
			continue
		}
		kept = append(kept, a)
	}
	clear(l.allocations[len(kept):])
	l.allocations = kept
	if len(released) > 0 {
		l.recompute()
	}
	return released
}

// ChangeTotal adds delta to the total. The total may never become negative.
func (l *Ledger[A]) ChangeTotal(delta A) error {
	if err := l.ops.ValidateDelta(delta); err != nil {
		return opError("change total", 0, err)
	}
	next := l.ops.Add(l.total, delta)
	if l.ops.Negative(next) {
		return opError("change total", 0, ErrNegativeTotal)
	}
	l.total = next
	l.recompute()
	return nil
}

// Consume releases an allocation and removes its amount from the total, which
// is how a reservation is settled.
func (l *Ledger[A]) Consume(id int64, reason string) (Allocation[A], error) {
	i := l.indexOf(id)
	if i < 0 {
		return Allocation[A]{}, opError("consume", id, ErrNotFound)
	}
	next := l.ops.Sub(l.total, l.allocations[i].Amount)
	if l.ops.Negative(next) {
		return Allocation[A]{}, opError("consume", id, ErrNegativeTotal)
	}
	a, err := l.Release(id, reason)
	if err != nil {
		return a, err
	}
	l.total = next
	l.recompute()
	return a, nil
}

func (l *Ledger[A]) indexOf(id int64) int {
	return slices.IndexFunc(l.allocations, func(a Allocation[A]) bool { return a.ID == id })
}

func (l *Ledger[A]) recompute() {
	reserved := l.ops.Zero()
	for _, a := range l.allocations {
		reserved = l.ops.Add(reserved, a.Amount)
	}
	l.available = l.ops.Sub(l.total, reserved)
}

type ledgerJSON[A any] struct {
	Owner       ecs.EntityID    `json:"owner"`
	Total       A               `json:"total"`
	Allocations []Allocation[A] `json:"allocations"`
	NextID      int64           `json:"nextId"`
}

func (l *Ledger[A]) MarshalJSON() ([]byte, error) {
	return json.Marshal(ledgerJSON[A]{
		Owner:       l.owner,
		Total:       l.total,
		Allocations: l.allocations,
		NextID:      l.nextID,
	})
}

// UnmarshalJSON restores the ledger. The receiver must have been built with New
// so that its arithmetic is known; available is recomputed, never decoded.
func (l *Ledger[A]) UnmarshalJSON(data []byte) error {
	if l.ops == nil {
		return opError("decode", 0, ErrInvalidAmount)
	}
	var v ledgerJSON[A]
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if l.ops.Negative(v.Total) {
		return opError("decode", 0, ErrNegativeTotal)
	}
	l.owner = v.Owner
	l.total = v.Total
	l.allocations = v.Allocations
	l.nextID = max(v.NextID, 1)
	for _, a := range l.allocations {
		l.nextID = max(l.nextID, a.ID+1)
	}
	l.recompute()
	return nil
}
