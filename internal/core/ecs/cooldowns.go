package ecs

import "maps"

// Cooldowns holds named timers counting down in seconds.
type Cooldowns struct {
	timers map[string]float64
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{timers: make(map[string]float64)}
}

// Use starts (or restarts) the named timer.
func (c *Cooldowns) Use(name string, seconds float64) {
	c.timers[name] = seconds
}

// Ready reports whether the named timer has run out or was never started.
func (c *Cooldowns) Ready(name string) bool {
	return c.timers[name] <= 0
}

func (c *Cooldowns) Remaining(name string) float64 {
	if v := c.timers[name]; v > 0 {
		return v
	}
	return 0
}

// Tick advances every timer by dt seconds.
func (c *Cooldowns) Tick(dt float64) {
	for name, v := range c.timers {
		if v <= 0 {
			continue
		}
		c.timers[name] = max(0, v-dt)
	}
}

func (c *Cooldowns) Snapshot() map[string]float64 {
	return maps.Clone(c.timers)
}

func (c *Cooldowns) Restore(timers map[string]float64) {
	c.timers = make(map[string]float64, len(timers))
	maps.Copy(c.timers, timers)
}
