package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/mocks"
	"github.com/taskhive/taskhive/internal/notify"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dueTask(t *testing.T, ownerID uuid.UUID, title string, due time.Time) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(ownerID, title, "", &due, "", "")
	require.NoError(t, err)
	return task
}

func TestDeadlineCheckerRunOnce(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	newChecker := func(taskStore *mocks.MockTaskStore, userStore *mocks.MockUserStore, notifier *mocks.MockNotifier) *DeadlineChecker {
		checker := NewDeadlineChecker(taskStore, userStore, notifier, window, window, testLogger())
		checker.timeFunc = func() time.Time { return now }
		return checker
	}

	t.Run("queries the configured window", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		var gotFrom, gotTo time.Time
		taskStore.FindDueBetweenFn = func(ctx context.Context, from, to time.Time) ([]*domain.Task, error) {
			gotFrom, gotTo = from, to
			return nil, nil
		}

		checker := newChecker(taskStore, mocks.NewMockUserStore(), &mocks.MockNotifier{})
		require.NoError(t, checker.RunOnce(context.Background()))

		assert.Equal(t, now.Add(-window), gotFrom)
		assert.Equal(t, now.Add(window), gotTo)
	})

	t.Run("groups tasks into one alert per owner", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		ana, err := domain.NewUser("Ana", "ana@example.com", "password123")
		require.NoError(t, err)
		bruno, err := domain.NewUser("Bruno", "bruno@example.com", "password123")
		require.NoError(t, err)
		userStore.Users[ana.Email] = ana
		userStore.Users[bruno.Email] = bruno

		due := now.Add(3 * time.Hour)
		taskStore := mocks.NewMockTaskStore()
		tasks := []*domain.Task{
			dueTask(t, ana.ID, "Ana task 1", due),
			dueTask(t, ana.ID, "Ana task 2", due),
			dueTask(t, bruno.ID, "Bruno task", due),
		}
		taskStore.FindDueBetweenFn = func(ctx context.Context, from, to time.Time) ([]*domain.Task, error) {
			return tasks, nil
		}

		notifier := &mocks.MockNotifier{}
		checker := newChecker(taskStore, userStore, notifier)
		require.NoError(t, checker.RunOnce(context.Background()))

		alerts := notifier.Alerts()
		require.Len(t, alerts, 2)

		byUser := make(map[uuid.UUID]notify.DeadlineAlert)
		for _, alert := range alerts {
			byUser[alert.UserID] = alert
		}
		require.Contains(t, byUser, ana.ID)
		require.Contains(t, byUser, bruno.ID)
		assert.Len(t, byUser[ana.ID].Tasks, 2)
		assert.Len(t, byUser[bruno.ID].Tasks, 1)
		assert.Equal(t, "ana@example.com", byUser[ana.ID].UserEmail)
		assert.Equal(t, now, byUser[ana.ID].GeneratedAt)
	})

	t.Run("no due tasks sends nothing", func(t *testing.T) {
		t.Parallel()
		notifier := &mocks.MockNotifier{}
		checker := newChecker(mocks.NewMockTaskStore(), mocks.NewMockUserStore(), notifier)

		require.NoError(t, checker.RunOnce(context.Background()))
		assert.Empty(t, notifier.Alerts())
	})

	t.Run("one failing user does not stop the others", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		ana, err := domain.NewUser("Ana", "ana@example.com", "password123")
		require.NoError(t, err)
		bruno, err := domain.NewUser("Bruno", "bruno@example.com", "password123")
		require.NoError(t, err)
		userStore.Users[ana.Email] = ana
		userStore.Users[bruno.Email] = bruno

		due := now.Add(time.Hour)
		taskStore := mocks.NewMockTaskStore()
		taskStore.FindDueBetweenFn = func(ctx context.Context, from, to time.Time) ([]*domain.Task, error) {
			return []*domain.Task{
				dueTask(t, ana.ID, "Ana task", due),
				dueTask(t, bruno.ID, "Bruno task", due),
			}, nil
		}

		notifier := &mocks.MockNotifier{}
		notifier.NotifyDeadlineFn = func(ctx context.Context, alert notify.DeadlineAlert) error {
			if alert.UserID == ana.ID {
				return errors.New("broker unavailable")
			}
			return nil
		}

		checker := newChecker(taskStore, userStore, notifier)
		err = checker.RunOnce(context.Background())
		assert.Error(t, err, "a partial failure is still reported")

		// Both users were attempted.
		assert.Len(t, notifier.Alerts(), 2)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		taskStore.FindDueBetweenFn = func(ctx context.Context, from, to time.Time) ([]*domain.Task, error) {
			return nil, errors.New("database down")
		}

		checker := newChecker(taskStore, mocks.NewMockUserStore(), &mocks.MockNotifier{})
		assert.Error(t, checker.RunOnce(context.Background()))
	})

	t.Run("panic inside the sweep is recovered into an error", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		taskStore.FindDueBetweenFn = func(ctx context.Context, from, to time.Time) ([]*domain.Task, error) {
			panic("boom")
		}

		checker := newChecker(taskStore, mocks.NewMockUserStore(), &mocks.MockNotifier{})
		err := checker.RunOnce(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panicked")
	})
}

func TestGroupByOwner(t *testing.T) {
	t.Parallel()

	ownerA := uuid.New()
	ownerB := uuid.New()
	due := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tasks := []*domain.Task{
		dueTask(t, ownerA, "a1", due),
		dueTask(t, ownerA, "a2", due),
		dueTask(t, ownerB, "b1", due),
		dueTask(t, ownerA, "a3", due),
	}

	groups := groupByOwner(tasks)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 3, "non-contiguous rows still land in the owner's batch")
	assert.Len(t, groups[1], 1)
	assert.Equal(t, ownerA, groups[0][0].OwnerID)
	assert.Equal(t, ownerB, groups[1][0].OwnerID)
}
