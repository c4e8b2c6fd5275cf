package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/shopping-list/internal/notification"
)

type Store interface {
	Candidates(ctx context.Context) ([]Candidate, error)
}

// SentLog answers whether a reminder for the list already went out in the
// current period.
type SentLog interface {
	ExistsSince(ctx context.Context, userID string, kind notification.Kind, relatedID string, since time.Time) (bool, error)
}

type NotificationCreator interface {
	Create(ctx context.Context, dto notification.CreateDTO) (*notification.Notification, error)
}

type Recorder interface {
	ReminderSent()
}

type Scheduler struct {
	store    Store
	sent     SentLog
	creator  NotificationCreator
	pool     *Pool
	interval time.Duration
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

type Config struct {
	Interval time.Duration
	Pool     PoolConfig
}

func NewScheduler(config Config, store Store, sent SentLog, creator NotificationCreator, logger *slog.Logger) *Scheduler {
	s := &Scheduler{
		store:    store,
		sent:     sent,
		creator:  creator,
		interval: config.Interval,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if s.interval <= 0 {
		s.interval = time.Hour
	}
	s.pool = NewPool(config.Pool, s.process, logger)
	return s
}

func (s *Scheduler) WithRecorder(r Recorder) *Scheduler {
	s.recorder = r
	return s
}

func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Run scans immediately and then on every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.pool.Start()
	defer s.pool.Shutdown()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("reminder scheduler started", "interval", s.interval)
	for {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("reminder scan failed", "error", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return nil
		}
	}
}

// Shutdown stops the worker pool. Queued jobs that have not started are
// dropped and count as finished for a running RunOnce.
func (s *Scheduler) Shutdown() {
	s.pool.Shutdown()
}

// RunOnce queues every due candidate and waits for the batch to finish.
// It returns how many jobs were queued.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	s.pool.Start()

	candidates, err := s.store.Candidates(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	var batch sync.WaitGroup
	queued := 0
	for _, c := range candidates {
		if !c.Due(now) {
			continue
		}
		batch.Add(1)
		if err := s.pool.Submit(Job{Candidate: c, done: batch.Done}); err != nil {
			batch.Done()
			s.logger.Warn("reminder job dropped", "error", err, "list_id", c.ListID)
			continue
		}
		queued++
	}

	waitCh := make(chan struct{})
	go func() {
		batch.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-ctx.Done():
		return queued, ctx.Err()
	}

	s.logger.Info("reminder scan complete", "candidates", len(candidates), "queued", queued)
	return queued, nil
}

func (s *Scheduler) process(ctx context.Context, job Job) {
	c := job.Candidate

	already, err := s.sent.ExistsSince(ctx, c.OwnerID, notification.KindReminder, c.ListID, c.DueAt())
	if err != nil {
		s.logger.Error("failed to check reminder log", "error", err, "list_id", c.ListID)
		return
	}
	if already {
		return
	}

	_, err = s.creator.Create(ctx, notification.CreateDTO{
		UserID:    c.OwnerID,
		Type:      notification.KindReminder,
		Message:   Message(c.ListName),
		RelatedID: c.ListID,
		ActionURL: notification.ListActionURL(c.ListID),
	})
	if err != nil {
		s.logger.Error("failed to create reminder", "error", err, "list_id", c.ListID, "user_id", c.OwnerID)
		return
	}

	if s.recorder != nil {
		s.recorder.ReminderSent()
	}
	s.logger.Info("reminder sent", "list_id", c.ListID, "user_id", c.OwnerID)
}
