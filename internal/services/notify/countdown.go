package notify

import (
	"fmt"
	"time"

	"remindd/internal/task"
	logx "remindd/pkg/logx"
)

// Countdown stages. Sleeps sum to 60 units; announcements land at the
// cumulative offsets 30, 40, 55, 59, 60. remaining==0 is the final stage.
var (
	stageSleeps    = [5]int{30, 10, 15, 4, 1}
	stageRemaining = [5]int{30, 20, 5, 1, 0}
)

// DefaultStageUnit is the wall-clock length of one countdown unit.
const DefaultStageUnit = time.Second

// Notifier produces countdown runs. It is itself stateless across runs;
// every Run call owns only its batch argument.
type Notifier struct {
	ann  Announcer
	log  logx.Logger
	unit time.Duration

	sleep func(time.Duration) // test seam, defaults to time.Sleep
}

func NewNotifier(ann Announcer, log logx.Logger, stageUnit time.Duration) *Notifier {
	if stageUnit <= 0 {
		stageUnit = DefaultStageUnit
	}
	return &Notifier{ann: ann, log: log, unit: stageUnit, sleep: time.Sleep}
}

// Run announces the batch, walks the five countdown stages, and returns.
// It is meant to run on its own goroutine; it never blocks the scheduler.
func (n *Notifier) Run(batch []task.Task) {
	if len(batch) == 0 {
		return
	}
	start := time.Now()
	n.log.Info("countdown started", logx.Int("tasks", len(batch)))

	n.ann.Announce(fmt.Sprintf("====== REMINDER: %d task(s) due ======", len(batch)))
	for _, t := range batch {
		n.ann.Announce(fmt.Sprintf("  - [%s] %s (priority %d) due at %s",
			t.Category, t.Title, t.Priority, t.Deadline.Format("2006-01-02 15:04")))
	}

	for k := range stageSleeps {
		n.sleep(time.Duration(stageSleeps[k]) * n.unit)
		for _, t := range batch {
			if rem := stageRemaining[k]; rem > 0 {
				n.ann.Announce(fmt.Sprintf("Reminder: %q is closing in %d seconds...", t.Title, rem))
			} else {
				n.ann.Announce(fmt.Sprintf("Final reminder: %q deadline reached! Clearing now.", t.Title))
			}
		}
	}

	n.ann.Announce("Reminder finished.")
	n.log.Info("countdown finished", logx.Int("tasks", len(batch)), logx.Duration("dur", time.Since(start)))
}
