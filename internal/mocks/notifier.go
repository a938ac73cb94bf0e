package mocks

import (
	"context"
	"sync"

	"github.com/taskhive/taskhive/internal/notify"
)

// MockNotifier implements notify.Notifier for testing, recording every
// alert it receives.
type MockNotifier struct {
	// NotifyDeadlineFn allows test cases to mock the NotifyDeadline behavior
	NotifyDeadlineFn func(ctx context.Context, alert notify.DeadlineAlert) error

	// Err is what NotifyDeadline returns when NotifyDeadlineFn is not set
	Err error

	mu     sync.Mutex
	alerts []notify.DeadlineAlert
}

// NotifyDeadline implements the notify.Notifier interface
func (m *MockNotifier) NotifyDeadline(ctx context.Context, alert notify.DeadlineAlert) error {
	m.mu.Lock()
	m.alerts = append(m.alerts, alert)
	m.mu.Unlock()

	if m.NotifyDeadlineFn != nil {
		return m.NotifyDeadlineFn(ctx, alert)
	}
	return m.Err
}

// Alerts returns a copy of the alerts recorded so far.
func (m *MockNotifier) Alerts() []notify.DeadlineAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notify.DeadlineAlert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Verify interface compliance
var _ notify.Notifier = (*MockNotifier)(nil)
