package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"remindd/internal/task"
	logx "remindd/pkg/logx"
)

type memSaver struct {
	calls int
	last  []task.Task
}

func (s *memSaver) SaveAll(ctx context.Context, tasks []task.Task) error {
	s.calls++
	s.last = tasks
	return nil
}

func runMenu(t *testing.T, store *task.Store, saver Saver, script string) string {
	t.Helper()
	var out bytes.Buffer
	m := NewMenu(store, saver, logx.Nop(), strings.NewReader(script), &out)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestMenuAddViewDelete(t *testing.T) {
	store := task.NewStore(0)
	saver := &memSaver{}

	deadline := time.Now().Add(time.Hour).Format(DeadlineLayout)
	script := strings.Join([]string{
		"2", // add
		"pay rent",
		"Personal",
		"5",
		deadline,
		"1", // view
		"3", // delete
		"1",
		"4", // save & exit
	}, "\n") + "\n"

	out := runMenu(t, store, saver, script)

	if !strings.Contains(out, "Task 'pay rent' added.") {
		t.Fatalf("missing add confirmation:\n%s", out)
	}
	if !strings.Contains(out, "pay rent") || !strings.Contains(out, "Personal") {
		t.Fatalf("view missing task:\n%s", out)
	}
	if !strings.Contains(out, "Task 1 deleted.") {
		t.Fatalf("missing delete confirmation:\n%s", out)
	}
	if store.Len() != 0 {
		t.Fatalf("store not empty after delete: %d", store.Len())
	}
	// add + delete + exit all flush
	if saver.calls != 3 {
		t.Fatalf("expected 3 saves, got %d", saver.calls)
	}
}

func TestMenuRejectsBadDeadline(t *testing.T) {
	store := task.NewStore(0)
	out := runMenu(t, store, &memSaver{}, "2\nx\nWork\n1\nnot-a-time\n4\n")
	if !strings.Contains(out, "Invalid time.") {
		t.Fatalf("bad deadline not rejected:\n%s", out)
	}
	if store.Len() != 0 {
		t.Fatalf("task added despite invalid time")
	}
}

func TestMenuDeleteUnknown(t *testing.T) {
	out := runMenu(t, task.NewStore(0), &memSaver{}, "3\n99\n4\n")
	if !strings.Contains(out, "Not found.") {
		t.Fatalf("unknown delete not reported:\n%s", out)
	}
}

func TestMenuCapacity(t *testing.T) {
	store := task.NewStore(1)
	deadline := time.Now().Add(time.Hour).Format(DeadlineLayout)
	script := strings.Join([]string{
		"2", "a", "Work", "1", deadline,
		"2", "b", "Work", "1", deadline,
		"4",
	}, "\n") + "\n"
	out := runMenu(t, store, &memSaver{}, script)
	if !strings.Contains(out, "Max tasks reached.") {
		t.Fatalf("capacity not reported:\n%s", out)
	}
}

func TestMenuEOFExits(t *testing.T) {
	runMenu(t, task.NewStore(0), &memSaver{}, "")
}

func TestMenuInvalidChoice(t *testing.T) {
	out := runMenu(t, task.NewStore(0), &memSaver{}, "7\n4\n")
	if !strings.Contains(out, "Invalid.") {
		t.Fatalf("invalid choice not reported:\n%s", out)
	}
}
