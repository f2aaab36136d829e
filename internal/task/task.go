package task

import (
	"fmt"
	"time"
)

// Field limits, matching the on-disk schema.
const (
	MaxTitleLen    = 128
	MaxCategoryLen = 32
)

// Task is one pending reminder. Tasks are immutable once added: they are
// created by Add, and leave the store either via Delete or by being
// extracted as due. There is no in-place edit.
type Task struct {
	ID       int64
	Title    string
	Category string
	Priority int
	Deadline time.Time
}

// Due reports whether the task's deadline is at or before now.
func (t Task) Due(now time.Time) bool {
	return !t.Deadline.After(now)
}

func (t Task) String() string {
	return fmt.Sprintf("#%d [%s] %s (priority %d) due %s",
		t.ID, t.Category, t.Title, t.Priority, t.Deadline.Format("2006-01-02 15:04"))
}
