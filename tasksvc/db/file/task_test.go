package file

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ichigozero/todokit/backend/tasksvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(id, title, userID string) tasksvc.Task {
	now := time.Now().Truncate(time.Second)
	return tasksvc.Task{
		ID:        id,
		Title:     title,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTaskRepositoryCreateAndFind(t *testing.T) {
	repo := NewTaskRepository(filepath.Join(t.TempDir(), "db.json"))

	created, err := repo.Create(newTask("t1", "Buy milk", "alice"))
	require.NoError(t, err)
	assert.Equal(t, "t1", created.ID)

	found, err := repo.Find("alice", "t1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.Title, found.Title)
	assert.Equal(t, created.UserID, found.UserID)
}

func TestTaskRepositoryFindScopedToOwner(t *testing.T) {
	repo := NewTaskRepository(filepath.Join(t.TempDir(), "db.json"))

	_, err := repo.Create(newTask("t1", "Buy milk", "alice"))
	require.NoError(t, err)

	_, err = repo.Find("bob", "t1")
	assert.Equal(t, tasksvc.ErrTaskNotFound, err)

	_, err = repo.Find("alice", "missing")
	assert.Equal(t, tasksvc.ErrTaskNotFound, err)
}

func TestTaskRepositoryFindAllInsertionOrder(t *testing.T) {
	repo := NewTaskRepository(filepath.Join(t.TempDir(), "db.json"))

	for _, task := range []tasksvc.Task{
		newTask("t1", "first", "alice"),
		newTask("t2", "second", "bob"),
		newTask("t3", "third", "alice"),
	} {
		_, err := repo.Create(task)
		require.NoError(t, err)
	}

	tasks, err := repo.FindAll("alice")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, "t3", tasks[1].ID)
}

func TestTaskRepositoryFindAllEmpty(t *testing.T) {
	repo := NewTaskRepository(filepath.Join(t.TempDir(), "db.json"))

	tasks, err := repo.FindAll("alice")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskRepositoryUpdatePartialMerge(t *testing.T) {
	repo := NewTaskRepository(filepath.Join(t.TempDir(), "db.json"))

	task := newTask("t1", "Buy milk", "alice")
	task.Description = "2 liters"
	task.Group = "errands"
	_, err := repo.Create(task)
	require.NoError(t, err)

	done := true
	updated, err := repo.Update("alice", "t1", tasksvc.TaskUpdate{Done: &done})
	require.NoError(t, err)

	assert.True(t, updated.Done)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, "2 liters", updated.Description)
	assert.Equal(t, "errands", updated.Group)
	assert.Equal(t, task.CreatedAt.Unix(), updated.CreatedAt.Unix())
	assert.False(t, updated.UpdatedAt.Before(task.UpdatedAt))
}

func TestTaskRepositoryUpdateRefreshesTimestamp(t *testing.T) {
	repo := NewTaskRepository(filepath.Join(t.TempDir(), "db.json"))

	task := newTask("t1", "Buy milk", "alice")
	task.UpdatedAt = task.UpdatedAt.Add(-time.Hour)
	_, err := repo.Create(task)
	require.NoError(t, err)

	title := "Buy oat milk"
	updated, err := repo.Update("alice", "t1", tasksvc.TaskUpdate{Title: &title})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt))
}

func TestTaskRepositoryUpdateScopedToOwner(t *testing.T) {
	repo := NewTaskRepository(filepath.Join(t.TempDir(), "db.json"))

	_, err := repo.Create(newTask("t1", "Buy milk", "alice"))
	require.NoError(t, err)

	title := "hijacked"
	_, err = repo.Update("bob", "t1", tasksvc.TaskUpdate{Title: &title})
	assert.Equal(t, tasksvc.ErrTaskNotFound, err)

	found, err := repo.Find("alice", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", found.Title)
}

func TestTaskRepositoryDelete(t *testing.T) {
	repo := NewTaskRepository(filepath.Join(t.TempDir(), "db.json"))

	_, err := repo.Create(newTask("t1", "Buy milk", "alice"))
	require.NoError(t, err)

	deleted, err := repo.Delete("alice", "t1")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.Find("alice", "t1")
	assert.Equal(t, tasksvc.ErrTaskNotFound, err)

	// Deleting again reports not-found, not an error.
	deleted, err = repo.Delete("alice", "t1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTaskRepositoryDeleteScopedToOwner(t *testing.T) {
	repo := NewTaskRepository(filepath.Join(t.TempDir(), "db.json"))

	_, err := repo.Create(newTask("t1", "Buy milk", "alice"))
	require.NoError(t, err)

	deleted, err := repo.Delete("bob", "t1")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.Find("alice", "t1")
	assert.NoError(t, err)
}

func TestTaskRepositoryDurableAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")

	first := NewTaskRepository(path)
	_, err := first.Create(newTask("t1", "Buy milk", "alice"))
	require.NoError(t, err)

	// A fresh instance over the same file observes durable state.
	second := NewTaskRepository(path)
	tasks, err := second.FindAll("alice")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0].ID)
}
