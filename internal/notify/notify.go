// Package notify delivers deadline alerts produced by the scheduler to an
// outbound channel. Delivery is best effort: a failed alert is logged and
// reported to the caller, never escalated.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskAlert is the per-task payload of a deadline alert.
type TaskAlert struct {
	ID       uuid.UUID  `json:"id"`
	Title    string     `json:"title"`
	DueDate  *time.Time `json:"due_date"`
	Priority string     `json:"priority"`
	Status   string     `json:"status"`
}

// DeadlineAlert groups the tasks approaching their deadline for one user.
type DeadlineAlert struct {
	UserID      uuid.UUID   `json:"user_id"`
	UserEmail   string      `json:"user_email"`
	UserName    string      `json:"user_name"`
	Tasks       []TaskAlert `json:"tasks"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Notifier sends a deadline alert over some delivery channel.
type Notifier interface {
	// NotifyDeadline delivers one alert. Implementations must not panic;
	// any delivery failure comes back as an error.
	NotifyDeadline(ctx context.Context, alert DeadlineAlert) error
}
