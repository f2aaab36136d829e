package notify

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"remindd/internal/task"
	logx "remindd/pkg/logx"
)

type recordingAnnouncer struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingAnnouncer) Announce(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingAnnouncer) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func countContaining(msgs []string, sub string) int {
	n := 0
	for _, m := range msgs {
		if strings.Contains(m, sub) {
			n++
		}
	}
	return n
}

func TestCountdownStageSequence(t *testing.T) {
	rec := &recordingAnnouncer{}
	n := NewNotifier(rec, logx.Nop(), time.Second)

	var sleeps []time.Duration
	n.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	now := time.Now()
	n.Run([]task.Task{{ID: 1, Title: "pay rent", Category: "Personal", Priority: 5, Deadline: now}})

	want := []time.Duration{30 * time.Second, 10 * time.Second, 15 * time.Second, 4 * time.Second, time.Second}
	if len(sleeps) != len(want) {
		t.Fatalf("expected %d sleeps, got %d: %v", len(want), len(sleeps), sleeps)
	}
	var total time.Duration
	for i, d := range sleeps {
		if d != want[i] {
			t.Fatalf("sleep %d: expected %v, got %v", i, want[i], d)
		}
		total += d
	}
	if total != 60*time.Second {
		t.Fatalf("total countdown %v, expected 60s", total)
	}

	msgs := rec.all()
	for _, rem := range []int{30, 20, 5, 1} {
		if got := countContaining(msgs, fmt.Sprintf("closing in %d seconds", rem)); got != 1 {
			t.Fatalf("expected one %ds announcement, got %d", rem, got)
		}
	}
	if got := countContaining(msgs, "deadline reached"); got != 1 {
		t.Fatalf("expected one final announcement, got %d", got)
	}
	if msgs[len(msgs)-1] != "Reminder finished." {
		t.Fatalf("unexpected last message: %q", msgs[len(msgs)-1])
	}
}

func TestCountdownAnnouncesEveryTaskAtEveryStage(t *testing.T) {
	rec := &recordingAnnouncer{}
	n := NewNotifier(rec, logx.Nop(), time.Second)
	n.sleep = func(time.Duration) {}

	now := time.Now()
	batch := []task.Task{
		{ID: 1, Title: "alpha", Category: "Work", Priority: 1, Deadline: now},
		{ID: 2, Title: "beta", Category: "Study", Priority: 2, Deadline: now},
	}
	n.Run(batch)

	msgs := rec.all()
	if got := countContaining(msgs, "2 task(s) due"); got != 1 {
		t.Fatalf("expected batch header, got %d", got)
	}
	for _, title := range []string{"alpha", "beta"} {
		// header line + 4 countdown stages + final stage
		if got := countContaining(msgs, title); got != 6 {
			t.Fatalf("task %q announced %d times, expected 6", title, got)
		}
	}
}

func TestCountdownEmptyBatchIsSilent(t *testing.T) {
	rec := &recordingAnnouncer{}
	n := NewNotifier(rec, logx.Nop(), time.Second)
	n.sleep = func(time.Duration) { t.Fatalf("slept on empty batch") }

	n.Run(nil)
	if len(rec.all()) != 0 {
		t.Fatalf("announcements for empty batch: %v", rec.all())
	}
}

func TestFanout(t *testing.T) {
	a := &recordingAnnouncer{}
	b := &recordingAnnouncer{}
	f := Fanout{a, nil, b}
	f.Announce("hello")
	if len(a.all()) != 1 || len(b.all()) != 1 {
		t.Fatalf("fanout missed a sink: %v %v", a.all(), b.all())
	}
}
