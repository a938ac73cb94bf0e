package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/platform/logger"
	"github.com/taskhive/taskhive/internal/store"
)

// TaskHandler handles task-related HTTP requests. Every operation runs in
// the scope of the authenticated user placed in the context by the auth
// middleware.
type TaskHandler struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskStore store.TaskStore, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskStore: taskStore,
		logger:    logger.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /tasks requests.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req TaskCreateRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := ValidateRequest(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	// Empty priority/status fall through to the domain defaults.
	var priority domain.Priority
	if req.Priority != "" {
		parsed, err := domain.ParsePriority(req.Priority)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		priority = parsed
	}

	var status domain.Status
	if req.Status != "" {
		parsed, err := domain.ParseStatus(req.Status)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		status = parsed
	}

	task, err := domain.NewTask(user.ID, req.Title, req.Description, req.DueDate, priority, status)
	if err != nil {
		HandleAPIError(w, r, err, "Invalid task data")
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// List handles GET /tasks requests. Filtering, ordering and pagination are
// driven by query parameters; unrecognized order_by names fall back to
// created_at rather than failing the request.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	opts, err := parseListOptions(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.taskStore.List(r.Context(), user.ID, opts)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(tasks))
}

// Get handles GET /tasks/{id} requests.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	taskID, err := pathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), user.ID, taskID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to get task",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()))
		}
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Update handles PUT /tasks/{id} requests. Fields absent from the body are
// left untouched; the response carries the task after the update.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	taskID, err := pathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req TaskUpdateRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	patch, err := patchFromRequest(req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskStore.Update(r.Context(), user.ID, taskID, patch)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to update task",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()))
		}
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles DELETE /tasks/{id} requests. The response carries the
// task as it was just before deletion.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	taskID, err := pathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskStore.Delete(r.Context(), user.ID, taskID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to delete task",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()))
		}
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// parseListOptions reads the list query parameters. skip and limit must be
// non-negative integers; status and priority must parse (aliases included);
// due_date_before must be RFC 3339. order_by and order_direction never
// fail, they normalize to the defaults instead.
func parseListOptions(r *http.Request) (store.ListOptions, error) {
	q := r.URL.Query()

	opts := store.ListOptions{
		OrderBy:        store.NormalizeOrderBy(q.Get("order_by")),
		OrderDirection: store.NormalizeOrderDirection(q.Get("order_direction")),
		Limit:          store.DefaultListLimit,
	}

	if raw := q.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return store.ListOptions{}, domain.NewValidationError(
				"skip", "must be a non-negative integer", domain.ErrValidation)
		}
		opts.Skip = skip
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return store.ListOptions{}, domain.NewValidationError(
				"limit", "must be a non-negative integer", domain.ErrValidation)
		}
		opts.Limit = limit
	}

	if raw := q.Get("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return store.ListOptions{}, err
		}
		opts.Filter.Status = &status
	}

	if raw := q.Get("priority"); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return store.ListOptions{}, err
		}
		opts.Filter.Priority = &priority
	}

	if raw := q.Get("due_date_before"); raw != "" {
		before, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return store.ListOptions{}, domain.NewValidationError(
				"due_date_before", "must be an RFC 3339 timestamp", domain.ErrValidation)
		}
		opts.Filter.DueDateBefore = &before
	}

	return opts, nil
}

// patchFromRequest converts the update payload into a domain patch,
// resolving priority and status names.
func patchFromRequest(req TaskUpdateRequest) (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}

	if req.Priority != nil {
		priority, err := domain.ParsePriority(*req.Priority)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.Priority = &priority
	}

	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.Status = &status
	}

	return patch, nil
}
