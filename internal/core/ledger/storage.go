package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
)

// Storage is the cargo hold of an entity. It keeps two independent ledgers:
// Wares totals the goods held, and its allocations are goods promised away;
// Space totals the free capacity, and its allocations are room promised to
// incoming goods. Space.Total() + Wares.Total().Total() == Capacity.
type Storage struct {
	capacity int
	Wares    *Ledger[Cargo]
	Space    *Ledger[int]
}

// NewStorage builds an empty storage of the given capacity.
func NewStorage(owner ecs.EntityID, capacity int) (*Storage, error) {
	if capacity < 0 {
		return nil, opError("new storage", 0, ErrNegativeTotal)
	}
	wares, err := New[Cargo](CargoArithmetic{}, owner, Cargo{})
	if err != nil {
		return nil, err
	}
	space, err := New[int](Units{}, owner, capacity)
	if err != nil {
		return nil, err
	}
	return &Storage{capacity: capacity, Wares: wares, Space: space}, nil
}

func (s *Storage) Capacity() int { return s.capacity }

// Stored is the quantity held per commodity, including goods promised away.
func (s *Storage) Stored() Cargo { return s.Wares.Total() }

// Free is the unused capacity, including room promised to incoming goods.
func (s *Storage) Free() int { return s.Space.Total() }

// SetOwner rebinds both ledgers.
func (s *Storage) SetOwner(owner ecs.EntityID) {
	s.Wares.SetOwner(owner)
	s.Space.SetOwner(owner)
}

// SetCapacity resizes the hold. Shrinking below what is stored fails.
func (s *Storage) SetCapacity(capacity int) error {
	if err := s.Space.ChangeTotal(capacity - s.capacity); err != nil {
		return err
	}
	s.capacity = capacity
	return nil
}

// Put adds goods outside of any reservation, e.g. mining output. Room
// promised to incoming goods is not available to Put.
func (s *Storage) Put(c Cargo) error {
	if err := (CargoArithmetic{}).Validate(c); err != nil {
		return opError("put", 0, err)
	}
	n := c.Total()
	if n > s.Space.Available() {
		return opError("put", 0, fmt.Errorf("%w: %d units do not fit in %d", ErrAllocationRejected, n, s.Space.Available()))
	}
	if err := s.Space.ChangeTotal(-n); err != nil {
		return err
	}
	return s.Wares.ChangeTotal(c)
}

// Take removes unreserved goods.
func (s *Storage) Take(c Cargo) error {
	ops := CargoArithmetic{}
	if err := ops.Validate(c); err != nil {
		return opError("take", 0, err)
	}
	if !ops.Fits(c, s.Wares.Available()) {
		return opError("take", 0, fmt.Errorf("%w: %s not available", ErrAllocationRejected, c))
	}
	if err := s.Wares.ChangeTotal(ops.Sub(Cargo{}, c)); err != nil {
		return err
	}
	return s.Space.ChangeTotal(c.Total())
}

// ReserveIncoming promises room for goods that will arrive later.
func (s *Storage) ReserveIncoming(units int, meta Meta, tick int64) (Allocation[int], error) {
	return s.Space.Reserve(Request[int]{Amount: units, Meta: meta, Issued: tick}, nil)
}

// ReserveOutgoing promises goods that will leave later.
func (s *Storage) ReserveOutgoing(c Cargo, meta Meta, tick int64) (Allocation[Cargo], error) {
	return s.Wares.Reserve(Request[Cargo]{Amount: c, Meta: meta, Issued: tick}, nil)
}

// Receive settles an incoming reservation: the promised room is consumed and
// the goods are added.
func (s *Storage) Receive(spaceID int64, c Cargo) error {
	a, ok := s.Space.Find(spaceID)
	if !ok {
		return opError("receive", spaceID, ErrNotFound)
	}
	if c.Total() != a.Amount {
		return opError("receive", spaceID, fmt.Errorf("%w: %d units for %d reserved", ErrInvalidAmount, c.Total(), a.Amount))
	}
	if _, err := s.Space.Consume(spaceID, "received"); err != nil {
		return err
	}
	return s.Wares.ChangeTotal(c)
}

// Dispatch settles an outgoing reservation: the goods leave and their room
// becomes free.
func (s *Storage) Dispatch(waresID int64) (Cargo, error) {
	a, err := s.Wares.Consume(waresID, "dispatched")
	if err != nil {
		return nil, err
	}
	if err := s.Space.ChangeTotal(a.Amount.Total()); err != nil {
		return nil, err
	}
	return a.Amount, nil
}

type storageJSON struct {
	Capacity int             `json:"capacity"`
	Wares    json.RawMessage `json:"wares"`
	Space    json.RawMessage `json:"space"`
}

func (s *Storage) MarshalJSON() ([]byte, error) {
	wares, err := json.Marshal(s.Wares)
	if err != nil {
		return nil, err
	}
	space, err := json.Marshal(s.Space)
	if err != nil {
		return nil, err
	}
	return json.Marshal(storageJSON{Capacity: s.capacity, Wares: wares, Space: space})
}

func (s *Storage) UnmarshalJSON(data []byte) error {
	var v storageJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	fresh, err := NewStorage(0, v.Capacity)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(v.Wares, fresh.Wares); err != nil {
		return err
	}
	if err := json.Unmarshal(v.Space, fresh.Space); err != nil {
		return err
	}
	if fresh.Space.Total()+fresh.Wares.Total().Total() != fresh.capacity {
		return opError("decode", 0, fmt.Errorf("%w: storage of %d does not add up", ErrInvalidAmount, fresh.capacity))
	}
	*s = *fresh
	return nil
}
