package scheduler

import (
	"context"
	"fmt"
	"time"

	"writer_digest_bot/internal/domain/chat"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// EventSink receives the ticks produced by the scheduler.
type EventSink interface {
	Dispatch(ctx context.Context, ev chat.Event) error
}

// DigestScheduler turns a daily cron spec into EventDailyTick events.
// Missed firings are not caught up.
type DigestScheduler struct {
	cronEngine *cron.Cron
	schedule   cron.Schedule
	sink       EventSink
	loc        *time.Location
	cronSpec   string
	timeout    time.Duration
	now        func() time.Time
	logger     *logrus.Entry
}

func NewDigestScheduler(
	sink EventSink,
	cronSpec string, // e.g., "0 7 * * *" (07:00 every day)
	loc *time.Location,
	timeout time.Duration,
	logger *logrus.Entry,
) (*DigestScheduler, error) {
	schedule, err := cron.ParseStandard(cronSpec)
	if err != nil {
		return nil, fmt.Errorf("invalid digest cron spec %q: %w", cronSpec, err)
	}
	if loc == nil {
		loc = time.Local
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &DigestScheduler{
		cronEngine: cron.New(cron.WithLocation(loc)),
		schedule:   schedule,
		sink:       sink,
		loc:        loc,
		cronSpec:   cronSpec,
		timeout:    timeout,
		now:        time.Now,
		logger:     logger,
	}, nil
}

func (s *DigestScheduler) Start() {
	s.logger.WithField("spec", s.cronSpec).Info("Starting digest scheduler...")
	s.cronEngine.Schedule(s.schedule, cron.FuncJob(s.fire))
	s.cronEngine.Start()
	s.logger.WithField("next_run", s.NextAfter(s.now())).Info("Digest scheduler started")
}

// NextAfter returns the first firing strictly after t, in the scheduler's zone.
func (s *DigestScheduler) NextAfter(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}

func (s *DigestScheduler) fire() {
	at := s.now().In(s.loc)
	s.logger.WithField("at", at.Format(time.RFC3339)).Info("Cron job triggered for daily digest.")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.sink.Dispatch(ctx, chat.Event{Kind: chat.EventDailyTick, At: at}); err != nil {
		s.logger.WithError(err).Error("Daily digest tick failed")
	}
}

func (s *DigestScheduler) Stop() {
	s.logger.Info("Stopping digest scheduler...")
	ctx := s.cronEngine.Stop() // Waits for a running tick to finish.
	<-ctx.Done()
	s.logger.Info("Digest scheduler gracefully stopped.")
}
