package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/api/shared"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/mocks"
	"github.com/taskhive/taskhive/internal/store"
)

// newTaskRouter mounts the handler behind a middleware that injects the
// given user, mirroring what the auth guard does in production.
func newTaskRouter(taskStore store.TaskStore, user *domain.User) http.Handler {
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	handler := NewTaskHandler(taskStore, logger)

	r := chi.NewRouter()
	r.Route("/tasks", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), shared.CurrentUserKey, user)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
		r.Post("/", handler.Create)
		r.Get("/", handler.List)
		r.Get("/{id}", handler.Get)
		r.Put("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
	})
	return r
}

func testUser() *domain.User {
	return &domain.User{
		ID:             uuid.New(),
		Name:           "Ana Souza",
		Email:          "ana@example.com",
		HashedPassword: "$2a$10$hashedhashedhashed",
	}
}

func mustTask(t *testing.T, ownerID uuid.UUID, title string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(ownerID, title, "", nil, "", "")
	require.NoError(t, err)
	return task
}

func TestTaskCreate(t *testing.T) {
	t.Parallel()

	user := testUser()

	t.Run("creates with defaults", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		router := newTaskRouter(taskStore, user)

		body := `{"title": "Buy groceries"}`
		req := httptest.NewRequest(http.MethodPost, "/tasks/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Buy groceries", resp.Title)
		assert.Equal(t, "medium", resp.Priority)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, user.ID, resp.OwnerID)
		assert.Nil(t, resp.UpdatedAt)
		assert.Len(t, taskStore.Tasks, 1)
	})

	t.Run("accepts portuguese priority and status aliases", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		router := newTaskRouter(taskStore, user)

		body := `{"title": "Declarar imposto", "priority": "alta", "status": "pendente"}`
		req := httptest.NewRequest(http.MethodPost, "/tasks/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "high", resp.Priority)
		assert.Equal(t, "pending", resp.Status)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore(), user)

		req := httptest.NewRequest(http.MethodPost, "/tasks/", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unknown priority", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore(), user)

		body := `{"title": "Task", "priority": "urgent"}`
		req := httptest.NewRequest(http.MethodPost, "/tasks/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskList(t *testing.T) {
	t.Parallel()

	user := testUser()

	t.Run("returns empty array when no tasks match", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore(), user)

		req := httptest.NewRequest(http.MethodGet, "/tasks/", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("passes filters and pagination to the store", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		var gotOpts store.ListOptions
		taskStore.ListFn = func(ctx context.Context, ownerID uuid.UUID, opts store.ListOptions) ([]*domain.Task, error) {
			gotOpts = opts
			return []*domain.Task{}, nil
		}
		router := newTaskRouter(taskStore, user)

		target := "/tasks/?status=pendente&priority=alta&due_date_before=2026-09-01T00:00:00Z" +
			"&order_by=due_date&order_direction=asc&skip=20&limit=10"
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotOpts.Filter.Status)
		assert.Equal(t, domain.StatusPending, *gotOpts.Filter.Status)
		require.NotNil(t, gotOpts.Filter.Priority)
		assert.Equal(t, domain.PriorityHigh, *gotOpts.Filter.Priority)
		require.NotNil(t, gotOpts.Filter.DueDateBefore)
		assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), gotOpts.Filter.DueDateBefore.UTC())
		assert.Equal(t, "due_date", gotOpts.OrderBy)
		assert.Equal(t, store.OrderAsc, gotOpts.OrderDirection)
		assert.Equal(t, 20, gotOpts.Skip)
		assert.Equal(t, 10, gotOpts.Limit)
	})

	t.Run("explicit zero limit reaches the store unchanged", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task := mustTask(t, user.ID, "Invisible task")
		taskStore.Tasks[task.ID] = task
		var gotOpts store.ListOptions
		taskStore.ListFn = func(ctx context.Context, ownerID uuid.UUID, opts store.ListOptions) ([]*domain.Task, error) {
			gotOpts = opts
			return []*domain.Task{}, nil
		}
		router := newTaskRouter(taskStore, user)

		req := httptest.NewRequest(http.MethodGet, "/tasks/?limit=0", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		// limit=0 asks for an empty page; it must not turn into the default.
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, gotOpts.Limit)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("unknown order_by falls back instead of failing", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		var gotOpts store.ListOptions
		taskStore.ListFn = func(ctx context.Context, ownerID uuid.UUID, opts store.ListOptions) ([]*domain.Task, error) {
			gotOpts = opts
			return []*domain.Task{}, nil
		}
		router := newTaskRouter(taskStore, user)

		req := httptest.NewRequest(http.MethodGet, "/tasks/?order_by=nonsense&order_direction=sideways", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "created_at", gotOpts.OrderBy)
		assert.Equal(t, store.OrderDesc, gotOpts.OrderDirection)
	})

	t.Run("rejects invalid filter values", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore(), user)

		for _, target := range []string{
			"/tasks/?status=archived",
			"/tasks/?priority=urgent",
			"/tasks/?due_date_before=tomorrow",
			"/tasks/?skip=-1",
			"/tasks/?limit=abc",
		} {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)
		}
	})
}

func TestTaskGet(t *testing.T) {
	t.Parallel()

	user := testUser()

	t.Run("returns owned task", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task := mustTask(t, user.ID, "Owned task")
		taskStore.Tasks[task.ID] = task
		router := newTaskRouter(taskStore, user)

		req := httptest.NewRequest(http.MethodGet, "/tasks/"+task.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, task.ID, resp.ID)
	})

	t.Run("another user's task is reported as not found", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task := mustTask(t, uuid.New(), "Someone else's task")
		taskStore.Tasks[task.ID] = task
		router := newTaskRouter(taskStore, user)

		req := httptest.NewRequest(http.MethodGet, "/tasks/"+task.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id is reported as not found", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore(), user)

		req := httptest.NewRequest(http.MethodGet, "/tasks/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTaskUpdate(t *testing.T) {
	t.Parallel()

	user := testUser()

	t.Run("partial update changes only provided fields", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task := mustTask(t, user.ID, "Original title")
		taskStore.Tasks[task.ID] = task
		router := newTaskRouter(taskStore, user)

		body := `{"status": "concluida"}`
		req := httptest.NewRequest(http.MethodPut, "/tasks/"+task.ID.String(), bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Original title", resp.Title)
		assert.Equal(t, "done", resp.Status)
		assert.NotNil(t, resp.UpdatedAt)
	})

	t.Run("unknown task is reported as not found", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore(), user)

		body := `{"title": "New title"}`
		req := httptest.NewRequest(http.MethodPut, "/tasks/"+uuid.NewString(), bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects invalid status name", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task := mustTask(t, user.ID, "Task")
		taskStore.Tasks[task.ID] = task
		router := newTaskRouter(taskStore, user)

		body := `{"status": "archived"}`
		req := httptest.NewRequest(http.MethodPut, "/tasks/"+task.ID.String(), bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskDelete(t *testing.T) {
	t.Parallel()

	user := testUser()

	t.Run("returns the deleted task's prior state", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task := mustTask(t, user.ID, "Doomed task")
		taskStore.Tasks[task.ID] = task
		router := newTaskRouter(taskStore, user)

		req := httptest.NewRequest(http.MethodDelete, "/tasks/"+task.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, task.ID, resp.ID)
		assert.Equal(t, "Doomed task", resp.Title)
		assert.Empty(t, taskStore.Tasks)
	})

	t.Run("deleting twice reports not found", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task := mustTask(t, user.ID, "Task")
		taskStore.Tasks[task.ID] = task
		router := newTaskRouter(taskStore, user)

		target := "/tasks/" + task.ID.String()
		first := httptest.NewRecorder()
		router.ServeHTTP(first, httptest.NewRequest(http.MethodDelete, target, nil))
		require.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		router.ServeHTTP(second, httptest.NewRequest(http.MethodDelete, target, nil))
		assert.Equal(t, http.StatusNotFound, second.Code)
	})
}
