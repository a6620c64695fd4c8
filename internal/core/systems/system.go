// Package systems runs the per-tick systems of a world in priority order.
package systems

import (
	"time"
)

// System is a step of the simulation tick.
type System interface {
	Name() string
	Priority() Priority
	Update(dt float64) error
}

// Priority defines execution order: higher runs first, equal priorities run
// in registration order.
type Priority uint16

// System priorities
const (
	PriorityLowest  Priority = 100
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
}

func (m *Metrics) record(took time.Duration, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += took
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	m.MaxExecutionTime = max(m.MaxExecutionTime, took)
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}

type funcSystem struct {
	name     string
	priority Priority
	update   func(dt float64) error
}

func (s funcSystem) Name() string            { return s.name }
func (s funcSystem) Priority() Priority      { return s.priority }
func (s funcSystem) Update(dt float64) error { return s.update(dt) }

// Func adapts a plain function to System.
func Func(name string, priority Priority, update func(dt float64) error) System {
	return funcSystem{name: name, priority: priority, update: update}
}
