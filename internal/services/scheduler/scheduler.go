package scheduler

import (
	"context"
	"sync"
	"time"

	"remindd/internal/task"
	logx "remindd/pkg/logx"
)

// DefaultPollInterval is the fallback sleep when the store is empty and
// there is no deadline to wait on.
const DefaultPollInterval = 2 * time.Second

type Config struct {
	PollInterval time.Duration
}

// Saver flushes the current task set after a mutation. Called with the
// store lock released; failures are reported but never stop the loop.
type Saver interface {
	SaveAll(ctx context.Context, tasks []task.Task) error
}

// Runner consumes one due batch. Run owns the batch exclusively and is
// expected to block for the whole countdown; the scheduler always calls it
// on a dedicated goroutine.
type Runner interface {
	Run(batch []task.Task)
}

// Auditor records each fired reminder. Best effort.
type Auditor interface {
	AppendFired(ctx context.Context, t task.Task, firedAt time.Time) error
}

type Service struct {
	mu  sync.Mutex
	cfg Config

	log     logx.Logger
	store   *task.Store
	saver   Saver
	runner  Runner
	auditor Auditor

	stopCh chan struct{}
	doneCh chan struct{}

	// countdown goroutines; joined only by WaitIdle (tests).
	notifiers sync.WaitGroup
}

func New(cfg Config, store *task.Store, saver Saver, runner Runner, auditor Auditor, log logx.Logger) *Service {
	return &Service{
		cfg:     cfg,
		store:   store,
		saver:   saver,
		runner:  runner,
		auditor: auditor,
		log:     log,
	}
}

// Apply updates runtime-tunable knobs (config hot reload).
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run(ctx, s.stopCh, s.doneCh)
	s.log.Info("scheduler started", logx.Duration("poll_interval", s.pollIntervalLocked()))
}

// Stop terminates the watch loop and waits for it to exit. Countdowns
// already handed off keep running; they own their batches and need nothing
// from the scheduler.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	stopCh, doneCh := s.stopCh, s.doneCh
	s.stopCh, s.doneCh = nil, nil
	s.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	select {
	case <-doneCh:
	case <-ctx.Done():
	}
	s.log.Info("scheduler stopped")
}

// WaitIdle blocks until every spawned countdown has finished. Test helper.
func (s *Service) WaitIdle() {
	s.notifiers.Wait()
}

func (s *Service) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	for {
		// Fast-exit check so a closed stopCh wins over more work.
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		default:
		}

		now := time.Now()
		deadline, ok := s.store.NextDeadline(now)
		if !ok {
			// Empty store: nothing to wait on, poll for new tasks.
			if !s.sleep(ctx, stopCh, s.pollInterval()) {
				return
			}
			continue
		}

		if wait := deadline.Sub(now); wait > 0 {
			if !s.sleep(ctx, stopCh, wait) {
				return
			}
		}

		batch := s.store.ExtractDue(time.Now())
		if len(batch) == 0 {
			// Early or spurious wake; re-evaluate.
			continue
		}
		s.dispatch(ctx, batch)
	}
}

func (s *Service) dispatch(ctx context.Context, batch []task.Task) {
	now := time.Now()
	s.log.Info("due batch extracted", logx.Int("tasks", len(batch)), logx.Int("remaining", s.store.Len()))

	// Tasks are already out of the store; a failed flush leaves the
	// in-memory state authoritative for this process.
	if s.saver != nil {
		if err := s.saver.SaveAll(ctx, s.store.List()); err != nil {
			s.log.Warn("task flush failed after extraction", logx.Err(err))
		}
	}
	if s.auditor != nil {
		for _, t := range batch {
			if err := s.auditor.AppendFired(ctx, t, now); err != nil {
				s.log.Warn("reminder audit append failed", logx.Int64("task_id", t.ID), logx.Err(err))
				break
			}
		}
	}

	if s.runner == nil {
		// The batch is considered handled either way; it is not re-inserted.
		s.log.Error("no countdown runner configured, batch discarded", logx.Int("tasks", len(batch)))
		return
	}
	s.notifiers.Add(1)
	go func() {
		defer s.notifiers.Done()
		s.runner.Run(batch)
	}()
}

// sleep waits for d, a stop, or ctx cancellation. It reports false when the
// loop should exit.
func (s *Service) sleep(ctx context.Context, stopCh <-chan struct{}, d time.Duration) bool {
	tmr := time.NewTimer(d)
	select {
	case <-ctx.Done():
		if !tmr.Stop() {
			<-tmr.C
		}
		return false
	case <-stopCh:
		if !tmr.Stop() {
			<-tmr.C
		}
		return false
	case <-tmr.C:
		return true
	}
}

func (s *Service) pollInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollIntervalLocked()
}

func (s *Service) pollIntervalLocked() time.Duration {
	if s.cfg.PollInterval > 0 {
		return s.cfg.PollInterval
	}
	return DefaultPollInterval
}
