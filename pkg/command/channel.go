// Package command implements the bounded message queue between a search
// worker and the loop that drives it.
package command

import "sync"

const (
	DefaultCapacity = 256
	// MaxLength is the size of a slot. Longer messages are truncated.
	MaxLength = 64
)

type slot struct {
	used bool
	n    int
	data [MaxLength]byte
}

// Channel is a fixed size FIFO ring. Write never blocks or overwrites,
// it reports false while the slot under the write cursor is unread.
type Channel struct {
	mu         sync.Mutex
	slots      []slot
	writeIndex int
	readIndex  int
	nonEmpty   bool
	count      int
}

func NewChannel(capacity int) *Channel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Channel{
		slots: make([]slot, capacity),
	}
}

func (c *Channel) Capacity() int {
	return len(c.slots)
}

func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *Channel) Write(msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	var s = &c.slots[c.writeIndex]
	if s.used {
		return false
	}
	s.n = copy(s.data[:], msg)
	s.used = true
	if !c.nonEmpty {
		c.readIndex = c.writeIndex
		c.nonEmpty = true
	}
	c.writeIndex = (c.writeIndex + 1) % len(c.slots)
	c.count++
	return true
}

func (c *Channel) Read() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.nonEmpty {
		return "", false
	}
	var s = &c.slots[c.readIndex]
	var msg = string(s.data[:s.n])
	*s = slot{}
	c.readIndex = (c.readIndex + 1) % len(c.slots)
	c.count--
	if c.readIndex == c.writeIndex {
		c.nonEmpty = false
	}
	return msg, true
}

// Drain reads every pending message.
func (c *Channel) Drain() []string {
	var result []string
	for {
		var msg, ok = c.Read()
		if !ok {
			return result
		}
		result = append(result, msg)
	}
}
