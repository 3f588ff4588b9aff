package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type CooldownStatus struct {
	OnCooldown bool
	Remaining  time.Duration
}

// Cooldown tracks the last successful rate-limited action per user. Entries are overwritten, never
// appended.
type Cooldown struct {
	window time.Duration
	now    func() time.Time

	mutex   *sync.Mutex
	last    map[string]time.Time
	pending map[string]struct{}
}

func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window:  window,
		now:     time.Now,
		mutex:   &sync.Mutex{},
		last:    make(map[string]time.Time),
		pending: make(map[string]struct{}),
	}
}

func (c *Cooldown) Window() time.Duration {
	return c.window
}

func (c *Cooldown) Check(id string) CooldownStatus {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.check(id)
}

func (c *Cooldown) Record(id string) {
	c.mutex.Lock()
	c.last[id] = c.now()
	c.mutex.Unlock()
}

// Reserve checks and holds the cooldown of id in one step. While the hold is active any other
// reservation for the same id reports OnCooldown with the full window remaining. The returned release
// must be called exactly once: with true to record the action, with false to drop the hold without
// consuming the window. release is nil when the reservation was refused.
func (c *Cooldown) Reserve(id string) (CooldownStatus, func(success bool)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, held := c.pending[id]; held {
		return CooldownStatus{OnCooldown: true, Remaining: c.window}, nil
	}

	status := c.check(id)
	if status.OnCooldown {
		return status, nil
	}

	c.pending[id] = struct{}{}

	var once sync.Once
	return status, func(success bool) {
		once.Do(func() {
			c.mutex.Lock()
			defer c.mutex.Unlock()

			delete(c.pending, id)
			if success {
				c.last[id] = c.now()
			}
		})
	}
}

// Sweep drops entries whose window has elapsed and returns how many were removed.
func (c *Cooldown) Sweep() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for id, at := range c.last {
		if c.now().Sub(at) >= c.window {
			delete(c.last, id)
			removed++
		}
	}

	if removed > 0 {
		log.Debug().Int("removed", removed).Int("remaining", len(c.last)).Msg("swept cooldown entries")
	}
	return removed
}

func (c *Cooldown) check(id string) CooldownStatus {
	at, ok := c.last[id]
	if !ok {
		return CooldownStatus{}
	}

	remaining := c.window - c.now().Sub(at)
	if remaining > 0 {
		return CooldownStatus{OnCooldown: true, Remaining: remaining}
	}

	return CooldownStatus{}
}
