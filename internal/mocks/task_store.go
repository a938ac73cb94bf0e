package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn         func(ctx context.Context, task *domain.Task) error
	GetByIDFn        func(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	ListFn           func(ctx context.Context, ownerID uuid.UUID, opts store.ListOptions) ([]*domain.Task, error)
	UpdateFn         func(ctx context.Context, ownerID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	DeleteFn         func(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	FindDueBetweenFn func(ctx context.Context, from, to time.Time) ([]*domain.Task, error)

	// Data for the default in-memory implementation
	Tasks map[uuid.UUID]*domain.Task
}

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.Tasks[task.ID] = task
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, ownerID, taskID)
	}

	task, exists := m.Tasks[taskID]
	if !exists || task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// List implements the TaskStore interface. The default implementation
// returns the owner's tasks without applying filter or ordering; tests
// needing those semantics set ListFn.
func (m *MockTaskStore) List(ctx context.Context, ownerID uuid.UUID, opts store.ListOptions) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, ownerID, opts)
	}

	tasks := make([]*domain.Task, 0)
	for _, task := range m.Tasks {
		if task.OwnerID == ownerID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, ownerID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, ownerID, taskID, patch)
	}

	task, exists := m.Tasks[taskID]
	if !exists || task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	now := time.Now().UTC()
	task.UpdatedAt = &now

	return task, nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, ownerID, taskID)
	}

	task, exists := m.Tasks[taskID]
	if !exists || task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}

	delete(m.Tasks, taskID)
	return task, nil
}

// FindDueBetween implements the TaskStore interface
func (m *MockTaskStore) FindDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Task, error) {
	if m.FindDueBetweenFn != nil {
		return m.FindDueBetweenFn(ctx, from, to)
	}

	tasks := make([]*domain.Task, 0)
	for _, task := range m.Tasks {
		if task.Status == domain.StatusDone || task.DueDate == nil {
			continue
		}
		if !task.DueDate.Before(from) && task.DueDate.Before(to) {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// Verify interface compliance
var _ store.TaskStore = (*MockTaskStore)(nil)
