// Package notify holds short-lived toast notices shown after console actions.
package notify

import (
	"sync"
	"time"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

// TTL is how long a notice stays visible.
const TTL = 3500 * time.Millisecond

type Notice struct {
	ID      int       `json:"id"`
	Message string    `json:"message"`
	Kind    Kind      `json:"type"`
	Expires time.Time `json:"-"`
}

type Center struct {
	mu      sync.Mutex
	now     func() time.Time
	lastID  int
	notices []Notice
}

func NewCenter() *Center {
	return &Center{now: time.Now}
}

// Push queues a notice. Unknown kinds are shown as info.
func (c *Center) Push(message string, kind Kind) Notice {
	switch kind {
	case Success, Error, Info:
	default:
		kind = Info
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.prune(now)
	c.lastID++
	n := Notice{ID: c.lastID, Message: message, Kind: kind, Expires: now.Add(TTL)}
	c.notices = append(c.notices, n)
	return n
}

// List returns the live notices, oldest first.
func (c *Center) List() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune(c.now())
	return append([]Notice{}, c.notices...)
}

func (c *Center) prune(now time.Time) {
	live := c.notices[:0]
	for _, n := range c.notices {
		if now.Before(n.Expires) {
			live = append(live, n)
		}
	}
	c.notices = live
}
