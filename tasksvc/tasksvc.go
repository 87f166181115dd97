package tasksvc

import (
	"errors"
	"time"
)

type Task struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Done        bool       `json:"done"`
	Group       string     `json:"group,omitempty"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskDraft holds the caller-supplied fields of a task to be created.
// Identity, ownership and timestamps are assigned by the service.
type TaskDraft struct {
	Title       string
	Description string
	Deadline    *time.Time
	Group       string
}

// TaskUpdate is a partial patch. Nil fields are left untouched, so
// done=false and "done absent" remain distinguishable.
type TaskUpdate struct {
	Title       *string
	Description *string
	Deadline    *time.Time
	Done        *bool
	Group       *string
}

type TaskRepository interface {
	Create(task Task) (Task, error)
	FindAll(userID string) ([]Task, error)
	Find(userID, taskID string) (Task, error)
	Update(userID, taskID string, fields TaskUpdate) (Task, error)
	Delete(userID, taskID string) (bool, error)
}

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTaskNotFound    = errors.New("task not found")
)
