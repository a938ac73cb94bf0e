package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/store"
)

func TestBuildListQuery(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	t.Run("defaults without filters", func(t *testing.T) {
		t.Parallel()
		query, args := buildListQuery(ownerID, store.ListOptions{
			Limit: store.DefaultListLimit,
		})

		assert.Equal(t,
			"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1"+
				" ORDER BY created_at DESC, id ASC LIMIT $2 OFFSET $3",
			query)
		require.Len(t, args, 3)
		assert.Equal(t, ownerID, args[0])
		assert.Equal(t, store.DefaultListLimit, args[1])
		assert.Equal(t, 0, args[2])
	})

	t.Run("zero limit selects no rows", func(t *testing.T) {
		t.Parallel()
		_, args := buildListQuery(ownerID, store.ListOptions{Limit: 0})
		require.Len(t, args, 3)
		assert.Equal(t, 0, args[1])
	})

	t.Run("negative limit falls back to the default", func(t *testing.T) {
		t.Parallel()
		_, args := buildListQuery(ownerID, store.ListOptions{Limit: -1})
		require.Len(t, args, 3)
		assert.Equal(t, store.DefaultListLimit, args[1])
	})

	t.Run("filters compose as a conjunction", func(t *testing.T) {
		t.Parallel()
		status := domain.StatusPending
		priority := domain.PriorityHigh
		before := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

		query, args := buildListQuery(ownerID, store.ListOptions{
			Filter: store.TaskFilter{
				Status:        &status,
				Priority:      &priority,
				DueDateBefore: &before,
			},
		})

		assert.Contains(t, query, "WHERE user_id = $1")
		assert.Contains(t, query, "AND status = $2")
		assert.Contains(t, query, "AND priority = $3")
		assert.Contains(t, query, "AND due_date IS NOT NULL AND due_date < $4")
		require.Len(t, args, 6)
		assert.Equal(t, status, args[1])
		assert.Equal(t, priority, args[2])
		assert.Equal(t, before, args[3])
	})

	t.Run("whitelisted order with explicit direction", func(t *testing.T) {
		t.Parallel()
		query, _ := buildListQuery(ownerID, store.ListOptions{
			OrderBy:        "due_date",
			OrderDirection: store.OrderAsc,
		})
		assert.Contains(t, query, "ORDER BY due_date ASC, id ASC")
	})

	t.Run("unknown order_by falls back to created_at", func(t *testing.T) {
		t.Parallel()
		query, _ := buildListQuery(ownerID, store.ListOptions{
			OrderBy: "password_hash; DROP TABLE tasks",
		})
		assert.Contains(t, query, "ORDER BY created_at DESC, id ASC")
		assert.NotContains(t, query, "DROP TABLE")
	})

	t.Run("limit is capped and negative skip clamped", func(t *testing.T) {
		t.Parallel()
		_, args := buildListQuery(ownerID, store.ListOptions{
			Limit: store.MaxListLimit + 500,
			Skip:  -10,
		})
		require.Len(t, args, 3)
		assert.Equal(t, store.MaxListLimit, args[1])
		assert.Equal(t, 0, args[2])
	})

	t.Run("explicit pagination is preserved", func(t *testing.T) {
		t.Parallel()
		_, args := buildListQuery(ownerID, store.ListOptions{Limit: 25, Skip: 50})
		require.Len(t, args, 3)
		assert.Equal(t, 25, args[1])
		assert.Equal(t, 50, args[2])
	})
}

func TestBuildUpdateQuery(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	taskID := uuid.New()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	t.Run("single field patch touches only that field and updated_at", func(t *testing.T) {
		t.Parallel()
		title := "Renamed"
		query, args := buildUpdateQuery(ownerID, taskID, domain.TaskPatch{Title: &title}, now)

		assert.Equal(t,
			"UPDATE tasks SET title = $1, updated_at = $2 WHERE id = $3 AND user_id = $4 RETURNING "+taskColumns,
			query)
		require.Len(t, args, 4)
		assert.Equal(t, "Renamed", args[0])
		assert.Equal(t, now, args[1])
		assert.Equal(t, taskID, args[2])
		assert.Equal(t, ownerID, args[3])
	})

	t.Run("full patch includes every field", func(t *testing.T) {
		t.Parallel()
		title := "Renamed"
		description := "New description"
		dueDate := now.Add(48 * time.Hour)
		priority := domain.PriorityLow
		status := domain.StatusDone

		query, args := buildUpdateQuery(ownerID, taskID, domain.TaskPatch{
			Title:       &title,
			Description: &description,
			DueDate:     &dueDate,
			Priority:    &priority,
			Status:      &status,
		}, now)

		assert.Contains(t, query, "title = $1")
		assert.Contains(t, query, "description = $2")
		assert.Contains(t, query, "due_date = $3")
		assert.Contains(t, query, "priority = $4")
		assert.Contains(t, query, "status = $5")
		assert.Contains(t, query, "updated_at = $6")
		assert.Contains(t, query, "WHERE id = $7 AND user_id = $8")
		assert.Len(t, args, 8)
	})

	t.Run("empty patch still refreshes updated_at", func(t *testing.T) {
		t.Parallel()
		query, args := buildUpdateQuery(ownerID, taskID, domain.TaskPatch{}, now)
		assert.Equal(t,
			"UPDATE tasks SET updated_at = $1 WHERE id = $2 AND user_id = $3 RETURNING "+taskColumns,
			query)
		assert.Len(t, args, 3)
	})
}

func TestNormalizeOrdering(t *testing.T) {
	t.Parallel()

	t.Run("order by whitelist", func(t *testing.T) {
		t.Parallel()
		for _, field := range []string{"created_at", "due_date", "priority", "status", "title"} {
			assert.Equal(t, field, store.NormalizeOrderBy(field))
		}
		assert.Equal(t, "created_at", store.NormalizeOrderBy("id"))
		assert.Equal(t, "created_at", store.NormalizeOrderBy(""))
		assert.Equal(t, "created_at", store.NormalizeOrderBy("owner_id"))
	})

	t.Run("direction defaults to descending", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, store.OrderAsc, store.NormalizeOrderDirection("asc"))
		assert.Equal(t, store.OrderDesc, store.NormalizeOrderDirection("desc"))
		assert.Equal(t, store.OrderDesc, store.NormalizeOrderDirection(""))
		assert.Equal(t, store.OrderDesc, store.NormalizeOrderDirection("sideways"))
	})
}
