package notify

import (
	"fmt"
	"io"
	"sync"
)

// Announcer delivers one reminder line to the user. Implementations must
// not block long enough to skew the countdown timing.
type Announcer interface {
	Announce(msg string)
}

// ConsoleAnnouncer writes announcements to a terminal-ish writer.
type ConsoleAnnouncer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleAnnouncer(w io.Writer) *ConsoleAnnouncer {
	return &ConsoleAnnouncer{w: w}
}

func (c *ConsoleAnnouncer) Announce(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, msg)
}

// Fanout replicates announcements to several sinks.
type Fanout []Announcer

func (f Fanout) Announce(msg string) {
	for _, a := range f {
		if a != nil {
			a.Announce(msg)
		}
	}
}
