package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"remindd/internal/task"
	logx "remindd/pkg/logx"
)

func openTestStore(t *testing.T, driver string) Store {
	t.Helper()
	name := "tasks.db"
	if driver == "file" {
		name = "tasks.txt"
	}
	st, err := Open(Config{Driver: driver, Path: filepath.Join(t.TempDir(), name)}, logx.Nop())
	if err != nil {
		t.Fatalf("Open(%s): %v", driver, err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testRoundTrip(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	got, err := st.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll on fresh store: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("fresh store not empty: %+v", got)
	}

	dl := time.Unix(time.Now().Add(time.Hour).Unix(), 0)
	in := []task.Task{
		{ID: 1, Title: "write report", Category: "Work", Priority: 3, Deadline: dl},
		{ID: 4, Title: "call home", Category: "Personal", Priority: 1, Deadline: dl.Add(time.Minute)},
	}
	if err := st.SaveAll(ctx, in); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	got, err = st.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != len(in) {
		t.Fatalf("expected %d tasks, got %d", len(in), len(got))
	}
	for i := range in {
		if got[i].ID != in[i].ID || got[i].Title != in[i].Title ||
			got[i].Category != in[i].Category || got[i].Priority != in[i].Priority ||
			got[i].Deadline.Unix() != in[i].Deadline.Unix() {
			t.Fatalf("task %d mismatch: got %+v want %+v", i, got[i], in[i])
		}
	}

	// SaveAll replaces, not appends.
	if err := st.SaveAll(ctx, in[:1]); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	got, err = st.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("SaveAll did not replace: %+v", got)
	}
}

func testFiredAudit(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	old := task.Task{ID: 1, Title: "old", Category: "Work", Priority: 1, Deadline: now}
	recent := task.Task{ID: 2, Title: "recent", Category: "Work", Priority: 1, Deadline: now}
	if err := st.AppendFired(ctx, old, now.Add(-48*time.Hour)); err != nil {
		t.Fatalf("AppendFired: %v", err)
	}
	if err := st.AppendFired(ctx, recent, now); err != nil {
		t.Fatalf("AppendFired: %v", err)
	}

	removed, err := st.PruneFired(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneFired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned entry, got %d", removed)
	}

	// Prune again: nothing left in range.
	removed, err = st.PruneFired(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneFired: %v", err)
	}
	if removed != 0 {
		t.Fatalf("second prune removed %d entries", removed)
	}

	if err := st.Checkpoint(ctx); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
}

func TestSQLiteRoundTrip(t *testing.T) { testRoundTrip(t, openTestStore(t, "sqlite")) }
func TestSQLiteFiredAudit(t *testing.T) {
	testFiredAudit(t, openTestStore(t, "sqlite"))
}

func TestFileRoundTrip(t *testing.T)  { testRoundTrip(t, openTestStore(t, "file")) }
func TestFileFiredAudit(t *testing.T) { testFiredAudit(t, openTestStore(t, "file")) }

func TestOpenDisabled(t *testing.T) {
	st, err := Open(Config{Driver: "none"}, logx.Nop())
	if err != nil {
		t.Fatalf("Open(none): %v", err)
	}
	if st != nil {
		t.Fatalf("disabled storage returned a store")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "redis", Path: "x"}, logx.Nop()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestFileSanitizesSeparator(t *testing.T) {
	st := openTestStore(t, "file")
	ctx := context.Background()
	in := []task.Task{{ID: 1, Title: "a|b", Category: "Work", Priority: 1, Deadline: time.Unix(100, 0)}}
	if err := st.SaveAll(ctx, in); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	got, err := st.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 1 || got[0].Title != "a/b" {
		t.Fatalf("separator not sanitized: %+v", got)
	}
}
