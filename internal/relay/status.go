package relay

import (
	"sync"

	"github.com/louisbranch/shellrelay/internal/protocol"
)

// statusCell is the single owner of the shared connectivity status.
//
// Only the navigation-outcome path mutates it, and only with members of the
// closed status enumeration. Every mutation notifies, including repeated
// mutations to the same value: clients treat the status as last-write-wins,
// not as a monotonic sequence.
type statusCell struct {
	mu     sync.Mutex
	value  protocol.Status
	notify func(protocol.Status)
}

func newStatusCell(notify func(protocol.Status)) *statusCell {
	return &statusCell{
		value:  protocol.StatusOnline,
		notify: notify,
	}
}

func (c *statusCell) setAndBroadcast(status protocol.Status) {
	if !status.Valid() {
		return
	}
	c.mu.Lock()
	c.value = status
	notify := c.notify
	c.mu.Unlock()

	if notify != nil {
		notify(status)
	}
}

func (c *statusCell) last() protocol.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}
