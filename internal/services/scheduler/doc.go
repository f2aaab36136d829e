// Package scheduler runs the deadline watch loop at the heart of remindd.
//
// # Overview
//
// One long-lived goroutine alternates between two states: waiting (asleep
// until the earliest deadline in the task store, or a short poll interval
// when the store is empty) and extracting (atomically draining every due
// task from the store). Each non-empty batch is persisted and then handed
// to a countdown runner on a fresh goroutine, fire-and-forget; the loop
// immediately goes back to waiting.
//
// # Synchronization
//
// The store's own lock is the only shared-mutation point. The loop never
// holds it while sleeping, and a task that made it into a batch is already
// gone from the store before the runner sees it, so a mid-countdown delete
// of that task is impossible.
//
// An in-flight wait is interruptible only by the timer firing or by Stop;
// concurrent adds and deletes take effect on the next loop iteration. An
// add with a nearer deadline is therefore observed at the next wake, which
// matches the coarse (second-level) timing this system promises.
package scheduler
