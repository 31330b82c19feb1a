package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/wordgo/internal/config"
	"github.com/example/wordgo/pkg/models"
)

// LearnerSource finds learners to remind.
type LearnerSource interface {
	GetByID(ctx context.Context, id int64) (*models.Learner, error)
	GetForNotification(ctx context.Context, hour int) ([]models.Learner, error)
}

// DueCounter counts words waiting for review.
type DueCounter interface {
	CountDue(ctx context.Context, userID int64, now time.Time) (int, error)
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(ctx context.Context, learner models.Learner, count int) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	learners  LearnerSource
	due       DueCounter
	notifier  Notifier
	cfg       config.Reminders
	logger    *zap.Logger
}

// New creates a new scheduler instance
func New(learners LearnerSource, due DueCounter, notifier Notifier, cfg config.Reminders, logger *zap.Logger) *Scheduler {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		learners:  learners,
		due:       due,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start begins running all scheduled tasks. Jobs stop once ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.cfg.Interval).Do(func() {
		if ctx.Err() != nil {
			return
		}
		if err := s.CheckDue(ctx, time.Now().UTC()); err != nil {
			s.logger.Error("reminder check failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder job: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

type dueCount struct {
	learner models.Learner
	count   int
}

// CheckDue reminds every learner subscribed for the current hour who has
// words due at now. Hours are UTC, matching the job clock and
// learners.notification_hour.
func (s *Scheduler) CheckDue(ctx context.Context, now time.Time) error {
	hour := now.UTC().Hour()
	if !s.cfg.InNotificationWindow(hour) {
		s.logger.Debug("outside notification hours, skipping reminders",
			zap.Int("hour", hour),
			zap.Int("start_hour", s.cfg.StartHour),
			zap.Int("end_hour", s.cfg.EndHour),
		)
		return nil
	}

	learners, err := s.learners.GetForNotification(ctx, hour)
	if err != nil {
		return fmt.Errorf("failed to get learners for notification: %w", err)
	}

	results := make([]dueCount, len(learners))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, learner := range learners {
		i, learner := i, learner
		g.Go(func() error {
			count, err := s.due.CountDue(gctx, learner.ID, now)
			if err != nil {
				return fmt.Errorf("failed to count due words for learner %d: %w", learner.ID, err)
			}
			results[i] = dueCount{learner: learner, count: count}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		if r.count == 0 {
			continue
		}
		if err := s.notifier.SendReminder(ctx, r.learner, capCount(r.count, r.learner.WordsPerSession)); err != nil {
			s.logger.Error("failed to send reminder", zap.Int64("learner_id", r.learner.ID), zap.Error(err))
		}
	}
	return nil
}

// RunManualCheck forces a check for a specific learner, ignoring notification hours
func (s *Scheduler) RunManualCheck(ctx context.Context, learnerID int64, now time.Time) error {
	learner, err := s.learners.GetByID(ctx, learnerID)
	if err != nil {
		return err
	}

	count, err := s.due.CountDue(ctx, learnerID, now)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	return s.notifier.SendReminder(ctx, *learner, count)
}

// Don't announce more than one session's worth.
func capCount(count, sessionSize int) int {
	if sessionSize > 0 && count > sessionSize {
		return sessionSize
	}
	return count
}

// LogNotifier writes reminders to the log.
type LogNotifier struct {
	Logger *zap.Logger
}

// SendReminder implements Notifier.
func (n LogNotifier) SendReminder(_ context.Context, learner models.Learner, count int) error {
	n.Logger.Info("words due for review",
		zap.Int64("learner_id", learner.ID),
		zap.String("username", learner.Username),
		zap.Int("due", count),
	)
	return nil
}
