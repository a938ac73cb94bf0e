package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes alerts to the structured log. It is the fallback when
// no broker is configured, and the seam tests use to observe dispatches.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for LogNotifier")
	}
	return &LogNotifier{logger: logger.With(slog.String("component", "log_notifier"))}
}

// NotifyDeadline implements Notifier.
func (n *LogNotifier) NotifyDeadline(ctx context.Context, alert DeadlineAlert) error {
	n.logger.Info("deadline alert",
		slog.String("user_id", alert.UserID.String()),
		slog.String("user_email", alert.UserEmail),
		slog.Int("task_count", len(alert.Tasks)))
	return nil
}
