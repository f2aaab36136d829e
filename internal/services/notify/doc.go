// Package notify runs the countdown announcement sequence for a batch of
// due tasks.
//
// # Model
//
// The scheduler hands each extracted batch to a fresh goroutine running
// Notifier.Run. A running countdown owns its batch exclusively, shares no
// state with the scheduler or with other countdowns, and never touches the
// task store. There is no cancellation: once started, a countdown runs to
// completion.
//
// # Timing
//
// A countdown spans 60 stage units (1s each by default), with announcements
// at the cumulative offsets 30, 40, 55, 59 and 60. Every task in the batch
// is announced at every stage; the last stage is the final "deadline
// reached" message.
//
// Announcers are fire-and-forget sinks. A slow sink must buffer or drop
// rather than stall the countdown clock.
package notify
