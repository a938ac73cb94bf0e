package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task validation errors
var (
	ErrEmptyTaskID    = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle = errors.New("task title cannot be empty")
	ErrEmptyOwnerID   = errors.New("task owner ID cannot be empty")
)

// Priority classifies how urgent a task is.
type Priority string

// Known priorities, in ascending order of urgency.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Status describes where a task is in its lifecycle.
type Status string

// Known statuses.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// ParsePriority resolves a priority name to its canonical value. The
// Portuguese names used by earlier clients (baixa, media, alta) are
// accepted as aliases.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low", "baixa":
		return PriorityLow, nil
	case "medium", "media":
		return PriorityMedium, nil
	case "high", "alta":
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
}

// ParseStatus resolves a status name to its canonical value, accepting the
// Portuguese aliases (pendente, em_andamento, concluida).
func ParseStatus(s string) (Status, error) {
	switch s {
	case "pending", "pendente":
		return StatusPending, nil
	case "in_progress", "em_andamento":
		return StatusInProgress, nil
	case "done", "concluida":
		return StatusDone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusDone
}

// Task is a unit of work owned by exactly one user. It is visible and
// mutable only through its owner's identity.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	OwnerID     uuid.UUID  `json:"user_id"`
}

// NewTask creates a task for the given owner, applying the defaults
// priority=medium and status=pending when the corresponding argument is
// empty. CreatedAt is set to now; UpdatedAt stays unset until the first
// mutation.
func NewTask(ownerID uuid.UUID, title, description string, dueDate *time.Time, priority Priority, status Status) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}
	if status == "" {
		status = StatusPending
	}

	task := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Priority:    priority,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
		OwnerID:     ownerID,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks that the Task holds consistent data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if !t.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}

	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}

	return nil
}

// TaskPatch describes a partial update. Nil fields are left untouched;
// populated fields replace the stored value.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *Priority
	Status      *Status
}

// IsEmpty reports whether the patch carries no changes.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		p.Priority == nil && p.Status == nil
}

// Validate checks the populated fields of the patch.
func (p TaskPatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return ErrEmptyTaskTitle
	}

	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, *p.Priority)
	}

	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
	}

	return nil
}
