package systems

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrDuplicateSystem = errors.New("system already registered")
	ErrUnknownSystem   = errors.New("unknown system")
)

type entry struct {
	system  System
	seq     int
	enabled bool
	metrics Metrics
}

// Scheduler runs registered systems once per Update. It is not safe for
// concurrent use.
type Scheduler struct {
	entries []*entry
	byName  map[string]*entry
	nextSeq int
}

func NewScheduler() *Scheduler {
	return &Scheduler{byName: make(map[string]*entry)}
}

func (s *Scheduler) Register(sys System) error {
	name := sys.Name()
	if _, ok := s.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, name)
	}
	e := &entry{system: sys, seq: s.nextSeq, enabled: true}
	s.nextSeq++
	s.byName[name] = e
	s.entries = append(s.entries, e)
	slices.SortStableFunc(s.entries, func(a, b *entry) int {
		if c := cmp.Compare(b.system.Priority(), a.system.Priority()); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return nil
}

func (s *Scheduler) Unregister(name string) error {
	e, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSystem, name)
	}
	delete(s.byName, name)
	s.entries = slices.DeleteFunc(s.entries, func(x *entry) bool { return x == e })
	return nil
}

func (s *Scheduler) SetEnabled(name string, enabled bool) error {
	e, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSystem, name)
	}
	e.enabled = enabled
	return nil
}

// Update runs every enabled system. A failing system does not stop the ones
// after it; all errors are returned joined.
func (s *Scheduler) Update(dt float64) error {
	var errs []error
	for _, e := range slices.Clone(s.entries) {
		if !e.enabled {
			continue
		}
		started := time.Now()
		err := e.system.Update(dt)
		e.metrics.record(time.Since(started), err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.system.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// ExecutionOrder lists system names in the order Update runs them.
func (s *Scheduler) ExecutionOrder() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.system.Name()
	}
	return out
}

func (s *Scheduler) Metrics(name string) (Metrics, bool) {
	e, ok := s.byName[name]
	if !ok {
		return Metrics{}, false
	}
	return e.metrics, true
}
