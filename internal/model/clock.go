package model

import (
	"sync"
	"time"
)

// Clock accumulates the thinking time of one side. There is no time
// control; the clock only counts up.
type Clock struct {
	mu          sync.Mutex
	used        time.Duration
	lastStarted time.Time
	isRunning   bool
	now         func() time.Time
}

type ClientClock struct {
	TimeUsed int64 `json:"timeUsed"` // milliseconds
	Running  bool  `json:"running"`
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		c.lastStarted = c.now()
		c.isRunning = true
	}
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.used += c.now().Sub(c.lastStarted)
		c.isRunning = false
	}
}

func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.used = 0
	c.isRunning = false
}

func (c *Clock) Used() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return c.used + c.now().Sub(c.lastStarted)
	}
	return c.used
}

func (c *Clock) client() ClientClock {
	c.mu.Lock()
	running := c.isRunning
	c.mu.Unlock()
	return ClientClock{TimeUsed: c.Used().Milliseconds(), Running: running}
}
