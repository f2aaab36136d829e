package task

import (
	"sync"
	"time"
)

// DefaultMaxTasks bounds the live set when the config does not say otherwise.
const DefaultMaxTasks = 256

// Store owns the live set of tasks. Every operation takes the store lock for
// its whole duration, so callers never observe a partial mutation. The lock
// is never held across blocking I/O or sleeps; persistence happens outside,
// on the snapshots the store hands out.
type Store struct {
	mu       sync.Mutex
	tasks    []Task
	nextID   int64
	maxTasks int
}

// NewStore creates an empty store. maxTasks <= 0 means DefaultMaxTasks.
func NewStore(maxTasks int) *Store {
	if maxTasks <= 0 {
		maxTasks = DefaultMaxTasks
	}
	return &Store{nextID: 1, maxTasks: maxTasks}
}

// Add assigns the next id and appends the task. Titles and categories are
// truncated to their field limits. Past deadlines are accepted; the
// scheduler picks them up on its next pass.
func (s *Store) Add(title, category string, priority int, deadline time.Time) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tasks) >= s.maxTasks {
		return Task{}, ErrCapacity
	}

	t := Task{
		ID:       s.nextID,
		Title:    clip(title, MaxTitleLen),
		Category: clip(category, MaxCategoryLen),
		Priority: priority,
		Deadline: deadline,
	}
	s.nextID++
	s.tasks = append(s.tasks, t)
	return t, nil
}

// Delete removes the task with the given id. It reports whether the task
// was present; deleting an unknown id is a no-op.
func (s *Store) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a snapshot copy of all live tasks in storage order.
func (s *Store) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of live tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// ExtractDue atomically removes and returns every task whose deadline is at
// or before now. The returned slice is owned by the caller; the tasks in it
// are no longer visible through any other store operation. Remaining tasks
// keep their relative order.
func (s *Store) ExtractDue(now time.Time) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []Task
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.Due(now) {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	// Zero the tail so extracted tasks don't linger in the backing array.
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = Task{}
	}
	s.tasks = kept
	return due
}

// NextDeadline returns the earliest deadline among live tasks, or ok=false
// when the store is empty. If any task is already due it returns now
// immediately rather than the true minimum: all due tasks are equally
// actionable and the scheduler will extract them in one batch anyway.
func (s *Store) NextDeadline(now time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best time.Time
	for _, t := range s.tasks {
		if t.Due(now) {
			return now, true
		}
		if best.IsZero() || t.Deadline.Before(best) {
			best = t.Deadline
		}
	}
	if best.IsZero() {
		return time.Time{}, false
	}
	return best, true
}

// Hydrate replaces the live set with tasks loaded from persistence and
// advances nextID past the highest loaded id. Called once at startup,
// before the scheduler starts.
func (s *Store) Hydrate(tasks []Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make([]Task, len(tasks))
	copy(s.tasks, tasks)
	s.nextID = 1
	for _, t := range s.tasks {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
