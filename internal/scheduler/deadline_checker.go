package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/notify"
	"github.com/taskhive/taskhive/internal/store"
)

// DeadlineChecker performs one deadline sweep: find every open task whose
// due date falls inside the window around now, group the hits by owner and
// hand each owner's batch to the notifier.
type DeadlineChecker struct {
	taskStore store.TaskStore
	userStore store.UserStore
	notifier  notify.Notifier
	logger    *slog.Logger

	lookback  time.Duration
	lookahead time.Duration

	// timeFunc allows tests to control the clock. Defaults to time.Now.
	timeFunc func() time.Time
}

// NewDeadlineChecker creates a DeadlineChecker.
func NewDeadlineChecker(
	taskStore store.TaskStore,
	userStore store.UserStore,
	notifier notify.Notifier,
	lookback, lookahead time.Duration,
	logger *slog.Logger,
) *DeadlineChecker {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DeadlineChecker")
	}

	return &DeadlineChecker{
		taskStore: taskStore,
		userStore: userStore,
		notifier:  notifier,
		logger:    logger.With(slog.String("component", "deadline_checker")),
		lookback:  lookback,
		lookahead: lookahead,
		timeFunc:  time.Now,
	}
}

// RunOnce executes a single deadline check. The sweep only reads task
// state, so running it twice for the same day at worst repeats alerts. A
// notification failure for one user is logged and counted but does not
// stop the remaining users, and the returned error never carries partial
// state the caller would need to roll back.
func (c *DeadlineChecker) RunOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("deadline check panicked", slog.Any("panic", r))
			err = fmt.Errorf("deadline check panicked: %v", r)
		}
	}()

	now := c.timeFunc().UTC()
	from := now.Add(-c.lookback)
	to := now.Add(c.lookahead)

	log := c.logger.With(
		slog.Time("window_from", from),
		slog.Time("window_to", to))
	log.Info("deadline check started")

	tasks, err := c.taskStore.FindDueBetween(ctx, from, to)
	if err != nil {
		log.Error("failed to query due tasks", slog.String("error", err.Error()))
		return fmt.Errorf("failed to query due tasks: %w", err)
	}
	if len(tasks) == 0 {
		log.Info("deadline check finished", slog.Int("users_alerted", 0))
		return nil
	}

	var alerted, failed int
	for _, batch := range groupByOwner(tasks) {
		if err := c.alertOwner(ctx, now, batch); err != nil {
			failed++
			log.Error("failed to alert user",
				slog.String("user_id", batch[0].OwnerID.String()),
				slog.String("error", err.Error()))
			continue
		}
		alerted++
	}

	log.Info("deadline check finished",
		slog.Int("tasks_due", len(tasks)),
		slog.Int("users_alerted", alerted),
		slog.Int("users_failed", failed))

	if failed > 0 {
		return fmt.Errorf("deadline check: %d of %d user alerts failed", failed, alerted+failed)
	}
	return nil
}

// alertOwner resolves the owner of a batch and dispatches their alert.
func (c *DeadlineChecker) alertOwner(ctx context.Context, now time.Time, batch []*domain.Task) error {
	ownerID := batch[0].OwnerID

	user, err := c.userStore.GetByID(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to resolve task owner: %w", err)
	}

	alert := notify.DeadlineAlert{
		UserID:      user.ID,
		UserEmail:   user.Email,
		UserName:    user.Name,
		Tasks:       make([]notify.TaskAlert, 0, len(batch)),
		GeneratedAt: now,
	}
	for _, task := range batch {
		alert.Tasks = append(alert.Tasks, notify.TaskAlert{
			ID:       task.ID,
			Title:    task.Title,
			DueDate:  task.DueDate,
			Priority: string(task.Priority),
			Status:   string(task.Status),
		})
	}

	return c.notifier.NotifyDeadline(ctx, alert)
}

// groupByOwner splits tasks into per-owner batches, preserving the order
// owners first appear in. FindDueBetween returns rows sorted by owner, so
// each owner forms one contiguous run.
func groupByOwner(tasks []*domain.Task) [][]*domain.Task {
	var groups [][]*domain.Task
	index := make(map[string]int, 8)

	for _, task := range tasks {
		key := task.OwnerID.String()
		if i, ok := index[key]; ok {
			groups[i] = append(groups[i], task)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, []*domain.Task{task})
	}

	return groups
}
