package pipeline

import (
	"log"
	"sync"
)

// Notification is one user-facing toast.
type Notification struct {
	Level   string `json:"level"` // "success" or "error"
	Message string `json:"message"`
}

// Collector buffers notifications so an HTTP handler can return everything
// an operation produced. Drain empties the buffer.
type Collector struct {
	mu      sync.Mutex
	pending []Notification
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Success(message string) { c.add("success", message) }
func (c *Collector) Error(message string)   { c.add("error", message) }

func (c *Collector) add(level, message string) {
	c.mu.Lock()
	c.pending = append(c.pending, Notification{Level: level, Message: message})
	c.mu.Unlock()
}

func (c *Collector) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// LogNotifier routes notifications to the process log. Used by CLI tools
// where there is no user session to toast at.
type LogNotifier struct{}

func (LogNotifier) Success(message string) { log.Printf("[notify] %s", message) }
func (LogNotifier) Error(message string)   { log.Printf("[notify] ERROR: %s", message) }
