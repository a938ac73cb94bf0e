package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/domain"
)

// Pagination bounds for TaskStore.List. A request above MaxListLimit is
// clamped, never rejected.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// OrderDirection selects ascending or descending ordering.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// sortFields is the whitelist of task columns that List may order by.
var sortFields = map[string]bool{
	"created_at": true,
	"due_date":   true,
	"priority":   true,
	"status":     true,
	"title":      true,
}

// NormalizeOrderBy maps an order_by name onto the sortable column
// whitelist, falling back to created_at for unrecognized names.
func NormalizeOrderBy(field string) string {
	if sortFields[field] {
		return field
	}
	return "created_at"
}

// NormalizeOrderDirection maps a direction name onto asc/desc, defaulting
// to descending.
func NormalizeOrderDirection(dir string) OrderDirection {
	if dir == string(OrderAsc) {
		return OrderAsc
	}
	return OrderDesc
}

// TaskFilter is a conjunction over optional criteria. Nil fields are
// omitted from the predicate entirely; they never mean "match nothing".
type TaskFilter struct {
	Status        *domain.Status
	Priority      *domain.Priority
	DueDateBefore *time.Time
}

// ListOptions bundles filtering, ordering and pagination for TaskStore.List.
// A Limit of zero selects no rows; callers wanting the default page size
// pass DefaultListLimit explicitly.
type ListOptions struct {
	Filter         TaskFilter
	OrderBy        string
	OrderDirection OrderDirection
	Skip           int
	Limit          int
}

// TaskStore defines the interface for task data persistence. Every
// operation is scoped to an owning user: a task that exists but belongs to
// a different owner is indistinguishable from a task that does not exist.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID within the owner's scope.
	// Returns ErrTaskNotFound if no such task is owned by ownerID.
	GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// List retrieves the owner's tasks matching the filter, ordered per
	// opts with ties broken by id ascending so pagination is deterministic.
	// Returns an empty slice when nothing matches.
	List(ctx context.Context, ownerID uuid.UUID, opts ListOptions) ([]*domain.Task, error)

	// Update applies a partial update to a task within the owner's scope,
	// changing only the populated patch fields and setting updated_at.
	// Returns the updated task, or ErrTaskNotFound if no such task is
	// owned by ownerID.
	Update(ctx context.Context, ownerID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes a task within the owner's scope and returns its prior
	// state. Returns ErrTaskNotFound if no such task is owned by ownerID.
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// FindDueBetween retrieves tasks of all owners whose status is not done
	// and whose due date falls in [from, to), ordered by owner then due
	// date. Used by the deadline checker; this is a pure read.
	FindDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Task, error)
}
